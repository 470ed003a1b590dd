// Command bomberproxy bridges one external GUI (UDP) to the
// authoritative bomberserver (TCP). See pkg/proxy.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"bomberwire/pkg/proxy"
)

func main() {
	os.Exit(run())
}

func run() int {
	guiAddrFlag := pflag.StringP("gui-address", "d", "", "GUI address (host:port) to send draw updates to")
	name := pflag.StringP("name", "n", "", "player name to join with")
	localPort := pflag.IntP("port", "p", 0, "local UDP port to listen on for GUI input")
	serverAddrFlag := pflag.StringP("server-address", "s", "", "bomberserver address (host:port)")
	help := pflag.BoolP("help", "h", false, "show usage and exit")
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}

	for _, flagName := range []string{"gui-address", "name", "port", "server-address"} {
		if f := pflag.Lookup(flagName); f == nil || !f.Changed {
			fmt.Fprintf(os.Stderr, "bomberproxy: missing required flag --%s\n", flagName)
			return 1
		}
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "bomberproxy").Logger()

	guiAddr, err := net.ResolveUDPAddr("udp", *guiAddrFlag)
	if err != nil {
		log.Error().Err(err).Str("gui_address", *guiAddrFlag).Msg("failed to resolve GUI address")
		return 1
	}

	p, err := proxy.New(guiAddr, *localPort, *serverAddrFlag, *name, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start proxy")
		return 1
	}

	log.Info().
		Str("gui_address", *guiAddrFlag).
		Str("server_address", *serverAddrFlag).
		Str("name", *name).
		Msg("proxy started")

	if err := p.Run(); err != nil {
		log.Error().Err(err).Msg("proxy terminated")
		return 1
	}
	return 0
}
