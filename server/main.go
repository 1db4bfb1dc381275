// server/main.go
package main

import (
	"flag"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// referenceFacilities are bootstrapped on startup, matching spec.md §6's
// external interface: the server ships with these five meeting rooms
// rather than a facility-creation operation.
var referenceFacilities = []string{"MR1", "MR2", "MR3", "MR4", "MR5"}

var (
	addrFlag          = flag.String("addr", "0.0.0.0:34524", "UDP address to listen on")
	useReliabilityFlag = flag.Bool("use-reliability", false, "enable at-most-once semantics (response log + duplicate replay)")
	packetDropRateFlag = flag.Float64("packet-drop-rate", 0.0, "probability in [0,1] of dropping an incoming datagram, for testing invocation semantics")
)

func main() {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *packetDropRateFlag < 0 || *packetDropRateFlag > 1 {
		log.Fatal().Float64("packet-drop-rate", *packetDropRateFlag).Msg("packet-drop-rate must be within [0,1]")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", *addrFlag)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addrFlag).Msg("failed to resolve listen address")
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addrFlag).Msg("failed to bind UDP socket")
	}
	defer conn.Close()

	transport := newServerTransport(conn, *useReliabilityFlag, *packetDropRateFlag)
	d := newDispatcher(transport, referenceFacilities)

	log.Info().
		Str("addr", conn.LocalAddr().String()).
		Bool("use_reliability", *useReliabilityFlag).
		Float64("packet_drop_rate", *packetDropRateFlag).
		Strs("facilities", referenceFacilities).
		Msg("server listening")

	d.run()
}
