// client/main.go
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	addrFlag           = flag.String("addr", "0.0.0.0:34523", "local UDP address to bind")
	serverAddrFlag     = flag.String("server-addr", "0.0.0.0:34524", "server UDP address in host:port format")
	useReliabilityFlag = flag.Bool("use-reliability", false, "resend with request IDs the server deduplicates, and enable duplicate fault injection")
	duplicateRateFlag  = flag.Float64("duplicate-packet-rate", 0.0, "probability in [0,1] of sending a duplicate datagram per request, for testing invocation semantics")
)

func main() {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *duplicateRateFlag < 0 || *duplicateRateFlag > 1 {
		log.Fatal().Float64("duplicate-packet-rate", *duplicateRateFlag).Msg("duplicate-packet-rate must be within [0,1]")
	}

	localAddr, err := net.ResolveUDPAddr("udp", *addrFlag)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addrFlag).Msg("invalid local address")
	}
	serverAddr, err := net.ResolveUDPAddr("udp", *serverAddrFlag)
	if err != nil {
		log.Fatal().Err(err).Str("server-addr", *serverAddrFlag).Msg("invalid server address")
	}
	conn, err := net.DialUDP("udp", localAddr, serverAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open UDP socket")
	}
	defer conn.Close()

	transport := newClientTransport(conn, *useReliabilityFlag, *duplicateRateFlag)

	fmt.Printf("Connected to server at %s\n", serverAddr)
	fmt.Println("Facility Booking System Client")
	fmt.Println("===============================")

	newCLIClient(transport).run()
}
