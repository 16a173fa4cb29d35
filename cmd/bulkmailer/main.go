// Standalone SMTP bulk mailer. Reads recipient addresses from a CSV
// file (one per line) and sends one plain-text message to each through
// an SSL SMTP connection, with a configurable delay between sends.
// Credentials come from the environment:
//
//	SMTP_SERVER, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_SENDER
//
// Subject and body default to EMAIL_SUBJECT / EMAIL_BODY when the flags
// are not given. This tool shares no state with the simulator.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("subject", os.Getenv("EMAIL_SUBJECT"), "subject line")
	body := flag.String("body", os.Getenv("EMAIL_BODY"), "plain-text body")
	recipientsFile := flag.String("recipients", "recipients.csv", "CSV file with one recipient address per line")
	delay := flag.Float64("delay", 1.0, "seconds to wait between sends")
	flag.Parse()

	if *subject == "" || *body == "" {
		log.Fatal("subject and body are required (flags or EMAIL_SUBJECT/EMAIL_BODY)")
	}

	server := os.Getenv("SMTP_SERVER")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	sender := os.Getenv("SMTP_SENDER")
	if server == "" || portStr == "" || username == "" || password == "" || sender == "" {
		log.Fatal("SMTP_SERVER, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and SMTP_SENDER must be set")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("invalid SMTP_PORT: %v", err)
	}

	recipients, err := readRecipients(*recipientsFile)
	if err != nil {
		log.Fatalf("reading recipients: %v", err)
	}
	if len(recipients) == 0 {
		log.Fatal("no recipients found")
	}

	dialer := gomail.NewDialer(server, port, username, password)
	dialer.SSL = true

	closer, err := dialer.Dial()
	if err != nil {
		log.Fatalf("connecting to SMTP server: %v", err)
	}
	defer closer.Close()

	sent := 0
	for i, recipient := range recipients {
		m := gomail.NewMessage()
		m.SetHeader("From", sender)
		m.SetHeader("To", recipient)
		m.SetHeader("Subject", *subject)
		m.SetBody("text/plain", *body)

		if err := gomail.Send(closer, m); err != nil {
			log.Printf("sending to %s: %v", recipient, err)
			continue
		}
		sent++
		fmt.Printf("Sent to %s (%d/%d)\n", recipient, i+1, len(recipients))

		if i < len(recipients)-1 && *delay > 0 {
			time.Sleep(time.Duration(*delay * float64(time.Second)))
		}
	}

	fmt.Printf("Done: %d/%d messages sent\n", sent, len(recipients))
}

func readRecipients(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var recipients []string
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		addr := strings.TrimSpace(row[0])
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return recipients, nil
}
