// Package config loads and stores persistent dutctl settings.
//
// Settings live in a YAML file in the OS-appropriate configuration
// directory (~/.config/dutctl/config.yaml on Linux and macOS,
// %LOCALAPPDATA%\dutctl on Windows). A missing file is not an error:
// built-in defaults apply, and command-line flags override whatever the
// file provides. Nothing in the core protocol code reads this package;
// settings are threaded in explicitly by the CLI.
package config
