// Command bot is a minimal scriptable reference client for the Landlord
// server: it performs the intake handshake, prints every frame it
// receives as one JSON line, and forwards each line of stdin as one raw
// command. It exists for smoke-testing and as the host for the optional
// --annotate pre-classifier of internal/handhint (SPEC_FULL §4.6/C10) —
// it is deliberately not a GUI.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"landlord/internal/handhint"
)

type CLI struct {
	Host     string `kong:"arg,optional,default='127.0.0.1',help='Server host'"`
	Port     int    `kong:"default='9999',help='Server port'"`
	Room     string `kong:"required,help='Room name to join'"`
	Name     string `kong:"required,help='Player display name'"`
	Annotate bool   `kong:"help='Append the two-digit hand-type code to play commands before sending'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("landlord-bot"),
		kong.Description("Minimal scriptable reference client for the Landlord server"),
		kong.UsageOnError(),
	)

	addr := net.JoinHostPort(cli.Host, strconv.Itoa(cli.Port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close()

	// One write, no trailing newline, matching the reference client's
	// handshake (poker_client.py: room_name + "\n" + player_name in a
	// single send) so this exercises the same handshake real clients do.
	if _, err := fmt.Fprintf(conn, "%s\n%s", cli.Room, cli.Name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	go printFrames(conn)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if cli.Annotate {
			if annotated, err := handhint.Annotate(strings.Fields(line)); err == nil {
				line = annotated
			}
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
	}
}

// printFrames copies whatever the server sends straight to stdout, one
// newline-delimited JSON frame per line, for a script to parse downstream.
func printFrames(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fmt.Print(line)
		}
		if err != nil {
			return
		}
	}
}
