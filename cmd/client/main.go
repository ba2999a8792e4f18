// A small command-line client for the TCP server: places, modifies, and
// cancels orders, requests snapshots, and prints the reports that come back.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"skoll/internal/book"
	skollnet "skoll/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the engine server")
	action := flag.String("action", "place", "action: place, modify, cancel, snapshot")

	id := flag.Uint64("id", 0, "order id")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	durationStr := flag.String("duration", "gtc", "order duration: gtc or fok")
	price := flag.Int("price", 100, "limit price in the smallest currency unit")
	qty := flag.Uint("qty", 10, "quantity")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", *serverAddr)

	side := book.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = book.Sell
	}
	duration := book.GTC
	if strings.ToLower(*durationStr) == "fok" {
		duration = book.FOK
	}

	var frame []byte
	switch strings.ToLower(*action) {
	case "place":
		frame = skollnet.SerializeOrder(skollnet.NewOrder, *id, side, duration, int32(*price), uint32(*qty))
	case "modify":
		frame = skollnet.SerializeOrder(skollnet.ModifyOrder, *id, side, duration, int32(*price), uint32(*qty))
	case "cancel":
		frame = skollnet.SerializeCancel(*id)
	case "snapshot":
		frame = make([]byte, 2)
		binary.BigEndian.PutUint16(frame, uint16(skollnet.SnapshotRequest))
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q\n", *action)
		flag.Usage()
		os.Exit(1)
	}

	if _, err := conn.Write(frame); err != nil {
		log.Fatalf("failed to send %s: %v", *action, err)
	}
	fmt.Printf("-> sent %s\n", *action)

	fmt.Println("Listening for reports... (Ctrl+C to exit)")
	readReports(conn)
}

func readReports(conn net.Conn) {
	buffer := make([]byte, 4096)
	for {
		n, err := conn.Read(buffer)
		if err != nil {
			log.Printf("connection closed: %v", err)
			return
		}
		printReport(buffer[:n])
	}
}

func printReport(frame []byte) {
	if len(frame) == 0 {
		return
	}
	switch skollnet.ReportMessageType(frame[0]) {
	case skollnet.ExecutionReport:
		if len(frame) < 29 {
			return
		}
		fmt.Printf("trade: bid %d@%d / ask %d@%d x%d\n",
			binary.BigEndian.Uint64(frame[1:9]),
			int32(binary.BigEndian.Uint32(frame[9:13])),
			binary.BigEndian.Uint64(frame[13:21]),
			int32(binary.BigEndian.Uint32(frame[21:25])),
			binary.BigEndian.Uint32(frame[25:29]))
	case skollnet.ErrorReport:
		if len(frame) < 5 {
			return
		}
		msgLen := binary.BigEndian.Uint32(frame[1:5])
		if len(frame) < int(5+msgLen) {
			return
		}
		fmt.Printf("error: %s\n", frame[5:5+msgLen])
	case skollnet.SnapshotReport:
		printSnapshot(frame)
	}
}

func printSnapshot(frame []byte) {
	if len(frame) < 5 {
		return
	}
	nBids := int(binary.BigEndian.Uint16(frame[1:3]))
	nAsks := int(binary.BigEndian.Uint16(frame[3:5]))
	offset := 5

	printLevels := func(label string, count int) {
		fmt.Printf("%s:\n", label)
		for i := 0; i < count; i++ {
			if len(frame) < offset+10 {
				return
			}
			fmt.Printf("  %8d x %-8d (%d orders)\n",
				int32(binary.BigEndian.Uint32(frame[offset:offset+4])),
				binary.BigEndian.Uint32(frame[offset+4:offset+8]),
				binary.BigEndian.Uint16(frame[offset+8:offset+10]))
			offset += 10
		}
	}
	printLevels("bids", nBids)
	printLevels("asks", nAsks)
}
