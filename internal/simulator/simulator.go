package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/dutctl/internal/logging"
	"github.com/muurk/dutctl/internal/protocol"
	"github.com/muurk/dutctl/internal/udp"
)

// Config describes the simulated device.
type Config struct {
	// Model is reported in discovery responses, e.g. "M001".
	Model string

	// Serial is reported in discovery responses, e.g. "SN0123456".
	Serial string

	// Seed seeds the telemetry noise generator. Zero means
	// time-derived (non-reproducible) noise.
	Seed int64
}

// Simulator is one simulated DUT. Create with New, then Start; Close
// releases all sockets and stops any running test cycle.
type Simulator struct {
	cfg Config
	rng *rand.Rand

	conn  *net.UDPConn // unicast command socket, also the reply source
	group *net.UDPConn // optional multicast listener

	mu     sync.Mutex
	cancel chan struct{} // closes to abort the active test cycle
	closed chan struct{}
	wg     sync.WaitGroup
}

// New creates a simulator. It owns no sockets until Start.
func New(cfg Config) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		closed: make(chan struct{}),
	}
}

// Start binds the command socket on address:port (port 0 picks an
// ephemeral port) and begins serving. Probes and commands arriving on
// this socket are answered from it, so responders are discoverable by
// their command endpoint.
func (s *Simulator) Start(address string, port int) error {
	laddr := &net.UDPAddr{IP: net.ParseIP(address), Port: port}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return fmt.Errorf("bind command socket: %w", err)
	}
	s.conn = conn

	logging.Info("simulator listening",
		zap.String("addr", conn.LocalAddr().String()),
		zap.String("model", s.cfg.Model),
		zap.String("serial", s.cfg.Serial),
	)

	s.wg.Add(1)
	go s.serve(conn)
	return nil
}

// JoinGroup additionally listens for discovery probes on the multicast
// group, the way real devices hear them. Replies still leave from the
// command socket so the prober sees the command endpoint as the source.
func (s *Simulator) JoinGroup(group string, port int) error {
	gaddr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	if gaddr.IP == nil {
		return fmt.Errorf("invalid group address %q", group)
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, gaddr)
	if err != nil {
		return fmt.Errorf("join group %s:%d: %w", group, port, err)
	}
	s.group = conn

	s.wg.Add(1)
	go s.serve(conn)
	return nil
}

// Addr returns the bound command endpoint.
func (s *Simulator) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Close stops serving, aborts any running test cycle, and waits for all
// simulator goroutines to finish.
func (s *Simulator) Close() error {
	select {
	case <-s.closed:
		return nil
	default:
	}
	close(s.closed)

	s.abortCycle()
	if s.conn != nil {
		s.conn.Close()
	}
	if s.group != nil {
		s.group.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Simulator) serve(conn *net.UDPConn) {
	defer s.wg.Done()

	buf := make([]byte, udp.MaxDatagramSize)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return // socket closed
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		logging.LogDatagram("recv", raddr.String(), payload)

		msg, err := protocol.Decode(payload)
		if err != nil {
			logging.Warn("simulator ignoring malformed datagram",
				zap.String("source", raddr.String()),
				zap.Error(err),
			)
			continue
		}
		s.handle(msg, raddr)
	}
}

func (s *Simulator) handle(msg protocol.DeviceMessage, raddr *net.UDPAddr) {
	switch msg.Name {
	case protocol.MsgID:
		s.reply(raddr, protocol.DiscoveryResponse(s.cfg.Model, s.cfg.Serial))

	case protocol.MsgTest:
		cmd, _ := msg.Get(protocol.KeyCmd)
		switch cmd {
		case protocol.CmdStart:
			s.startCycle(msg, raddr)
		case protocol.CmdStop:
			s.abortCycle()
			s.reply(raddr, protocol.TestAck(protocol.ResultStopped))
		default:
			logging.Warn("simulator ignoring TEST command", zap.String("cmd", cmd))
		}

	default:
		logging.Warn("simulator ignoring message", zap.String("name", msg.Name))
	}
}

func (s *Simulator) startCycle(msg protocol.DeviceMessage, raddr *net.UDPAddr) {
	duration, err := intField(msg, protocol.KeyDuration)
	if err != nil {
		logging.Warn("simulator rejecting start command", zap.Error(err))
		return
	}
	rate, err := intField(msg, protocol.KeyRate)
	if err != nil || rate <= 0 {
		logging.Warn("simulator rejecting start command", zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		// One test cycle at a time; a new start replaces the old run.
		close(s.cancel)
	}
	cancel := make(chan struct{})
	s.cancel = cancel
	// Each cycle gets its own generator so a replaced run can finish
	// draining without racing the new one.
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	s.reply(raddr, protocol.TestAck(protocol.ResultStarted))

	s.wg.Add(1)
	go s.runCycle(raddr, duration, rate, rng, cancel)
}

// runCycle emits telemetry every rate milliseconds until the test
// duration elapses, then sends the STATE=IDLE sentinel. The waveform is a
// discharging-battery ramp with noise, which is what the real simulators
// produce.
func (s *Simulator) runCycle(raddr *net.UDPAddr, durationSeconds, rateMillis int, rng *rand.Rand, cancel chan struct{}) {
	defer s.wg.Done()

	interval := time.Duration(rateMillis) * time.Millisecond
	totalMillis := durationSeconds * 1000

	for elapsed := rateMillis; elapsed <= totalMillis; elapsed += rateMillis {
		select {
		case <-cancel:
			return
		case <-s.closed:
			return
		case <-time.After(interval):
		}

		progress := float64(elapsed) / float64(totalMillis)
		mv := 4500.0 - 300.0*progress + rng.Float64()*20.0
		ma := -12.0 + rng.Float64()*4.0
		s.reply(raddr, protocol.StatusReport(elapsed, round1(mv), round1(ma)))
	}

	s.reply(raddr, protocol.TestComplete())
	logging.Info("simulator test cycle complete",
		zap.String("peer", raddr.String()),
		zap.Int("duration_s", durationSeconds),
		zap.Int("rate_ms", rateMillis),
	)
}

func (s *Simulator) abortCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
}

func (s *Simulator) reply(raddr *net.UDPAddr, msg protocol.DeviceMessage) {
	payload := msg.Encode()
	if _, err := s.conn.WriteToUDP(payload, raddr); err != nil {
		logging.Warn("simulator reply failed",
			zap.String("peer", raddr.String()),
			zap.Error(err),
		)
		return
	}
	logging.LogDatagram("send", raddr.String(), payload)
}

func intField(msg protocol.DeviceMessage, key string) (int, error) {
	value, ok := msg.Get(key)
	if !ok {
		return 0, &protocol.FieldError{Message: msg.Name, Key: key}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &protocol.FieldError{Message: msg.Name, Key: key, Value: value, Invalid: true}
	}
	return n, nil
}

// round1 keeps telemetry to one decimal place, matching real simulator
// output like MV=4448.9.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
