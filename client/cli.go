package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhbka/distributed-booking/common"
)

func durationSeconds(seconds uint8) time.Duration {
	return time.Duration(seconds) * time.Second
}

// cliClient drives the interactive menu and turns menu selections into
// wire requests over a clientTransport.
type cliClient struct {
	transport *clientTransport
}

func newCLIClient(transport *clientTransport) *cliClient {
	return &cliClient{transport: transport}
}

func (c *cliClient) run() {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\nAvailable commands:")
		fmt.Println("1. availability - Query facility availability")
		fmt.Println("2. book         - Book a facility")
		fmt.Println("3. offset       - Offset an existing booking")
		fmt.Println("4. extend       - Extend an existing booking")
		fmt.Println("5. monitor      - Monitor facility availability")
		fmt.Println("6. cancel       - Cancel a booking")
		fmt.Println("7. exit         - Exit the client")
		input := readLine(reader, "\nEnter command: ")

		switch strings.ToLower(input) {
		case "1", "availability":
			c.handleAvailability(reader)
		case "2", "book":
			c.handleBook(reader)
		case "3", "offset":
			c.handleOffset(reader)
		case "4", "extend":
			c.handleExtend(reader)
		case "5", "monitor":
			c.handleMonitor(reader)
		case "6", "cancel":
			c.handleCancel(reader)
		case "7", "exit":
			fmt.Println("Exiting client.")
			return
		default:
			fmt.Println("Unknown command. Please try again.")
		}
	}
}

func (c *cliClient) sendAndReport(req common.RawRequest) {
	resp, err := c.transport.send(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	if resp.IsError {
		fmt.Printf("Server rejected request: %s\n", resp.Message)
		return
	}
	fmt.Println(resp.Message)
}

func (c *cliClient) handleAvailability(reader *bufio.Reader) {
	facilityName := readLine(reader, "Enter facility name: ")
	days, err := readDaysList(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	c.sendAndReport(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.AvailabilityRequest{FacilityName: facilityName, Days: days},
	})
}

func (c *cliClient) handleBook(reader *bufio.Reader) {
	facilityName := readLine(reader, "Enter facility name: ")
	start, end, err := readBookingInterval(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	c.sendAndReport(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.BookRequest{FacilityName: facilityName, Start: start, End: end},
	})
}

func (c *cliClient) handleOffset(reader *bufio.Reader) {
	id, err := readBookingID(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	hours, minutes, negative, err := readOffset(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	c.sendAndReport(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.OffsetBookingRequest{BookingID: id, Hours: hours, Minutes: minutes, Negative: negative},
	})
}

func (c *cliClient) handleExtend(reader *bufio.Reader) {
	id, err := readBookingID(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	hourStr := readLine(reader, "Enter additional hours: ")
	minuteStr := readLine(reader, "Enter additional minutes (0-59): ")
	var hourVal, minuteVal int
	if _, err := fmt.Sscanf(hourStr, "%d", &hourVal); err != nil {
		fmt.Printf("Error: invalid hours: %v\n", err)
		return
	}
	if _, err := fmt.Sscanf(minuteStr, "%d", &minuteVal); err != nil {
		fmt.Printf("Error: invalid minutes: %v\n", err)
		return
	}
	if hourVal < 0 || hourVal > 255 || minuteVal < 0 || minuteVal > 255 {
		fmt.Println("Error: hours/minutes out of range")
		return
	}
	hour, err := common.NewHour(uint8(hourVal))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	minute, err := common.NewMinute(uint8(minuteVal))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	c.sendAndReport(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.ExtendBookingRequest{BookingID: id, Hours: hour, Minutes: minute},
	})
}

func (c *cliClient) handleCancel(reader *bufio.Reader) {
	id, err := readBookingID(reader)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	c.sendAndReport(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.CancelBookingRequest{BookingID: id},
	})
}

func (c *cliClient) handleMonitor(reader *bufio.Reader) {
	facilityName := readLine(reader, "Enter facility name: ")
	secondsStr := readLine(reader, "Enter monitor duration in seconds (max 255): ")
	var secondsVal int
	if _, err := fmt.Sscanf(secondsStr, "%d", &secondsVal); err != nil || secondsVal <= 0 || secondsVal > 255 {
		fmt.Println("Error: invalid duration")
		return
	}
	seconds := uint8(secondsVal)

	resp, err := c.transport.send(common.RawRequest{
		RequestID: uuid.New(),
		Type:      common.MonitorFacilityRequest{FacilityName: facilityName, Seconds: seconds},
	})
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	if resp.IsError {
		fmt.Printf("Server rejected request: %s\n", resp.Message)
		return
	}
	fmt.Println(resp.Message)
	fmt.Println("Listening for updates...")

	c.transport.listenForNotifications(durationSeconds(seconds), func(notification common.RawResponse) {
		fmt.Printf("\nUpdate received: %s\n", notification.Message)
	})
	log.Debug().Str("facility", facilityName).Msg("monitor window elapsed")
	fmt.Println("Monitor window elapsed, returning to menu.")
}
