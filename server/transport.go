package main

import (
	"math/rand/v2"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/mhbka/distributed-booking/common"
)

// recvBufferSize is the maximum UDP payload the wire protocol allows.
const recvBufferSize = 65535

// serverTransport owns the UDP socket, the drop-injection fault hook, and
// (when reliability is enabled) the response log used to detect and replay
// duplicate requests without involving the dispatcher. It is the sole
// owner of the response log (spec.md §3, "Ownership").
type serverTransport struct {
	conn          *net.UDPConn
	useReliability bool
	dropRate      float64
	responseLog   *ResponseLog
	buf           []byte
}

func newServerTransport(conn *net.UDPConn, useReliability bool, dropRate float64) *serverTransport {
	return &serverTransport{
		conn:           conn,
		useReliability: useReliability,
		dropRate:       dropRate,
		responseLog:    NewResponseLog(responseLogCapacity),
		buf:            make([]byte, recvBufferSize),
	}
}

// receive blocks for the next datagram, applies drop injection, replays a
// cached response for duplicate requests without surfacing them to the
// dispatcher, and otherwise returns the decoded request and its sender.
func (t *serverTransport) receive() (common.RawRequest, *net.UDPAddr, error) {
	for {
		n, peer, err := t.conn.ReadFromUDP(t.buf)
		if err != nil {
			return common.RawRequest{}, nil, common.NewTransportError("receive", err)
		}

		if rand.Float64() < t.dropRate {
			log.Debug().Str("peer", peer.String()).Msg("dropped incoming datagram (fault injection)")
			continue
		}

		req, err := common.DecodeRequest(t.buf[:n])
		if err != nil {
			log.Warn().Err(err).Str("peer", peer.String()).Msg("discarding malformed datagram")
			continue
		}

		if t.useReliability {
			if cached, ok := t.responseLog.Get(req.RequestID); ok {
				log.Debug().Str("request_id", req.RequestID.String()).Msg("replaying cached response for duplicate request")
				if _, err := t.conn.WriteToUDP(cached, peer); err != nil {
					log.Warn().Err(err).Msg("failed to replay cached response")
				}
				continue
			}
		}

		return req, peer, nil
	}
}

// send serializes response once, transmits it to peer, and — when
// reliability is enabled — records it in the response log under its
// request ID so a retransmitted duplicate can be answered without
// re-running the handler.
func (t *serverTransport) send(response common.RawResponse, peer *net.UDPAddr) {
	data, err := common.EncodeResponse(response)
	if err != nil {
		log.Warn().Err(err).Str("peer", peer.String()).Msg("failed to encode response")
		return
	}
	if t.useReliability {
		t.responseLog.Insert(response.RequestID, data)
	}
	if _, err := t.conn.WriteToUDP(data, peer); err != nil {
		log.Warn().Err(err).Str("peer", peer.String()).Msg("failed to send response")
	}
}
