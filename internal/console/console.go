// Package console is the interactive front end: a small menu loop that feeds
// one command at a time into the book and prints the results.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"skoll/internal/book"
)

// Run drives the menu loop until the user exits or input ends.
func Run(b *book.Book, in io.Reader, out io.Writer) {
	reader := bufio.NewScanner(in)
	fmt.Fprintln(out, "Welcome to the order book console.")

	for {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "1. Create an order")
		fmt.Fprintln(out, "2. Modify an existing order")
		fmt.Fprintln(out, "3. Cancel an order")
		fmt.Fprintln(out, "4. Display order book")
		fmt.Fprintln(out, "5. Exit")
		fmt.Fprint(out, "Choose an option (1-5): ")

		choice, ok := readLine(reader)
		if !ok {
			return
		}
		switch choice {
		case "1":
			createOrder(b, reader, out)
		case "2":
			modifyOrder(b, reader, out)
		case "3":
			cancelOrder(b, reader, out)
		case "4":
			displayBook(b, out)
		case "5":
			fmt.Fprintln(out, "Exiting.")
			return
		default:
			fmt.Fprintln(out, "Invalid choice, try again.")
		}
	}
}

func createOrder(b *book.Book, reader *bufio.Scanner, out io.Writer) {
	id, ok := promptUint64(reader, out, "Order ID: ")
	if !ok {
		return
	}
	side, ok := promptSide(reader, out)
	if !ok {
		return
	}
	duration, ok := promptDuration(reader, out)
	if !ok {
		return
	}
	price, ok := promptInt32(reader, out, "Price: ")
	if !ok {
		return
	}
	quantity, ok := promptUint32(reader, out, "Quantity: ")
	if !ok {
		return
	}

	order, err := book.NewOrder(id, side, duration, price, quantity)
	if err != nil {
		fmt.Fprintf(out, "Rejected: %v\n", err)
		return
	}
	trades, err := b.Submit(order)
	if err != nil {
		fmt.Fprintf(out, "Submit failed: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Order submitted.")
	printTrades(trades, out)
}

func modifyOrder(b *book.Book, reader *bufio.Scanner, out io.Writer) {
	id, ok := promptUint64(reader, out, "Order ID to modify: ")
	if !ok {
		return
	}
	side, ok := promptSide(reader, out)
	if !ok {
		return
	}
	price, ok := promptInt32(reader, out, "New price: ")
	if !ok {
		return
	}
	quantity, ok := promptUint32(reader, out, "New quantity: ")
	if !ok {
		return
	}

	trades, err := b.Modify(book.Modifier{ID: id, Side: side, Price: price, Quantity: quantity})
	if err != nil {
		fmt.Fprintf(out, "Modify failed: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Modification processed.")
	printTrades(trades, out)
}

func cancelOrder(b *book.Book, reader *bufio.Scanner, out io.Writer) {
	id, ok := promptUint64(reader, out, "Order ID to cancel: ")
	if !ok {
		return
	}
	b.Cancel(id)
	fmt.Fprintln(out, "Cancellation processed.")
}

func displayBook(b *book.Book, out io.Writer) {
	snap := b.Snapshot()
	fmt.Fprintf(out, "Orders in book: %d\n", b.Size())
	fmt.Fprintln(out, "Bids:")
	for _, lvl := range snap.Bids {
		fmt.Fprintf(out, "  %8d x %-8d (%d orders)\n", lvl.Price, lvl.Quantity, lvl.Orders)
	}
	fmt.Fprintln(out, "Asks:")
	for _, lvl := range snap.Asks {
		fmt.Fprintf(out, "  %8d x %-8d (%d orders)\n", lvl.Price, lvl.Quantity, lvl.Orders)
	}
}

func printTrades(trades []book.Trade, out io.Writer) {
	if len(trades) == 0 {
		return
	}
	fmt.Fprintf(out, "Generated %d trade(s):\n", len(trades))
	for _, trade := range trades {
		fmt.Fprintf(out, "  %s\n", trade)
	}
}

func readLine(reader *bufio.Scanner) (string, bool) {
	if !reader.Scan() {
		return "", false
	}
	return strings.TrimSpace(reader.Text()), true
}

func promptSide(reader *bufio.Scanner, out io.Writer) (book.Side, bool) {
	fmt.Fprint(out, "Side (1 for BUY, 2 for SELL): ")
	line, ok := readLine(reader)
	if !ok {
		return 0, false
	}
	if line == "2" {
		return book.Sell, true
	}
	return book.Buy, true
}

func promptDuration(reader *bufio.Scanner, out io.Writer) (book.Duration, bool) {
	fmt.Fprint(out, "Duration (1 for GTC, 2 for FOK): ")
	line, ok := readLine(reader)
	if !ok {
		return 0, false
	}
	if line == "2" {
		return book.FOK, true
	}
	return book.GTC, true
}

func promptUint64(reader *bufio.Scanner, out io.Writer, prompt string) (uint64, bool) {
	fmt.Fprint(out, prompt)
	line, ok := readLine(reader)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid number %q\n", line)
		return 0, false
	}
	return v, true
}

func promptUint32(reader *bufio.Scanner, out io.Writer, prompt string) (uint32, bool) {
	fmt.Fprint(out, prompt)
	line, ok := readLine(reader)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		fmt.Fprintf(out, "Invalid number %q\n", line)
		return 0, false
	}
	return uint32(v), true
}

func promptInt32(reader *bufio.Scanner, out io.Writer, prompt string) (int32, bool) {
	fmt.Fprint(out, prompt)
	line, ok := readLine(reader)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(line, 10, 32)
	if err != nil {
		fmt.Fprintf(out, "Invalid number %q\n", line)
		return 0, false
	}
	return int32(v), true
}
