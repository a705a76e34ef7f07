// httpprobe sends one GET request and prints the response line by line.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/devwelkin/hermes-lite/internal/lines"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	addr := flag.String("addr", "localhost:42069", "server address")
	path := flag.String("path", "/", "resource to request")
	timeout := flag.Duration("timeout", 10*time.Second, "give up after this long")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("error connecting")
	}
	if err := conn.SetDeadline(time.Now().Add(*timeout)); err != nil {
		log.Fatal().Err(err).Msg("error setting deadline")
	}
	log.Debug().Str("addr", *addr).Msg("connection established")

	if _, err := fmt.Fprintf(conn, "GET %s HTTP/1.1\r\nHost: %s\r\n\r\n", *path, *addr); err != nil {
		log.Fatal().Err(err).Msg("error sending request")
	}

	lineChan, errChan := lines.Channel(conn)
	for line := range lineChan {
		fmt.Printf("%s\n", line)
	}
	if err := <-errChan; err != nil {
		log.Fatal().Err(err).Msg("error reading response")
	}
}
