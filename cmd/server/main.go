package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"landlord/internal/config"
	"landlord/internal/room"
	"landlord/internal/session"
)

type CLI struct {
	Config string `kong:"help='Path to an optional landlord.hcl config file',default='landlord.hcl'"`
	Addr   string `kong:"help='Override the listen address (host:port)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("landlord-server"),
		kong.Description("Three-player Landlord (Dou Dizhu) card game server"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cli.Addr != "" {
		cfg.Listen.Address = cli.Addr
	}

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	roomLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "room").
		Logger()

	sessionLogger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "server",
	})
	if cli.Debug {
		sessionLogger.SetLevel(log.DebugLevel)
	}

	clock := quartz.NewReal()
	registry := room.NewRegistry(roomLogger, clock)

	listener, err := net.Listen("tcp", cfg.Listen.Address)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	roomLogger.Info().Str("addr", cfg.Listen.Address).Int("backlog", cfg.Listen.Backlog).Msg("listening")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		roomLogger.Info().Msg("shutting down")
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				os.Exit(0)
			}
			roomLogger.Error().Err(err).Msg("accept failed")
			continue
		}
		go handleConn(conn, registry, sessionLogger, clock, cfg)
	}
}

// handshakeBufSize bounds the single read the intake handshake performs,
// generously sized rather than the original's fixed 20-byte recv, which
// accepts longer room/player names as a side effect (SPEC_FULL §9, source
// note 9a — the spec does not mandate fixing this, so it is left as an
// incidental improvement rather than a deliberate feature).
const handshakeBufSize = 1024

// handleConn performs the intake handshake and routes the new session
// into its room. The handshake is one room_name+"\n"+player_name write
// from the client with no trailing newline (poker_client.py's single
// `send`), so it must be read with a single Read, not two ReadString('\n')
// calls — the second would block forever waiting for a newline the client
// never sends.
func handleConn(conn net.Conn, registry *room.Registry, logger *log.Logger, clock quartz.Clock, cfg *config.Server) {
	buf := make([]byte, handshakeBufSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		_ = conn.Close()
		return
	}
	roomName, playerName, ok := strings.Cut(string(buf[:n]), "\n")
	if !ok {
		_ = conn.Close()
		return
	}
	roomName = strings.TrimSpace(roomName)
	playerName = strings.TrimSpace(playerName)
	if roomName == "" || playerName == "" {
		_ = conn.Close()
		return
	}

	sess := session.New(conn, playerName, logger, clock, cfg.HeartbeatInterval)
	sess.Start()

	if err := registry.Join(roomName, sess); err != nil {
		logger.Error("room join failed", "room", roomName, "player", playerName, "err", err)
	}
}
