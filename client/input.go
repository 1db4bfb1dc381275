package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mhbka/distributed-booking/common"
)

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// toUint8 range-checks a parsed int before narrowing it, since the wire
// types (Day, Hour, Minute) are all backed by uint8.
func toUint8(val int) (uint8, error) {
	if val < 0 || val > 255 {
		return 0, fmt.Errorf("value %d out of range 0-255", val)
	}
	return uint8(val), nil
}

func readDaysList(reader *bufio.Reader) ([]common.Day, error) {
	numDaysStr := readLine(reader, "Enter number of days to check: ")
	numDays, err := strconv.Atoi(numDaysStr)
	if err != nil || numDays <= 0 {
		return nil, fmt.Errorf("invalid number of days")
	}

	fmt.Println("Enter day indices (0=Mon, 1=Tue, ..., 6=Sun):")
	days := make([]common.Day, 0, numDays)
	for i := 0; i < numDays; i++ {
		dayStr := readLine(reader, fmt.Sprintf("Day %d: ", i+1))
		ordinal, err := strconv.Atoi(dayStr)
		if err != nil {
			return nil, fmt.Errorf("invalid day index: %w", err)
		}
		ordinalU8, err := toUint8(ordinal)
		if err != nil {
			return nil, err
		}
		day, err := common.NewDay(ordinalU8)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func readTime(reader *bufio.Reader, label string) (common.Time, error) {
	dayStr := readLine(reader, fmt.Sprintf("Enter %s day (0=Mon..6=Sun): ", label))
	dayOrdinal, err := strconv.Atoi(dayStr)
	if err != nil {
		return common.Time{}, fmt.Errorf("invalid %s day: %w", label, err)
	}
	dayOrdinalU8, err := toUint8(dayOrdinal)
	if err != nil {
		return common.Time{}, err
	}
	day, err := common.NewDay(dayOrdinalU8)
	if err != nil {
		return common.Time{}, err
	}

	hourStr := readLine(reader, fmt.Sprintf("Enter %s hour (0-23): ", label))
	hourVal, err := strconv.Atoi(hourStr)
	if err != nil {
		return common.Time{}, fmt.Errorf("invalid %s hour: %w", label, err)
	}
	hourValU8, err := toUint8(hourVal)
	if err != nil {
		return common.Time{}, err
	}
	hour, err := common.NewHour(hourValU8)
	if err != nil {
		return common.Time{}, err
	}

	minuteStr := readLine(reader, fmt.Sprintf("Enter %s minute (0-59): ", label))
	minuteVal, err := strconv.Atoi(minuteStr)
	if err != nil {
		return common.Time{}, fmt.Errorf("invalid %s minute: %w", label, err)
	}
	minuteValU8, err := toUint8(minuteVal)
	if err != nil {
		return common.Time{}, err
	}
	minute, err := common.NewMinute(minuteValU8)
	if err != nil {
		return common.Time{}, err
	}

	return common.Time{Day: day, Hour: hour, Minute: minute}, nil
}

func readBookingInterval(reader *bufio.Reader) (common.Time, common.Time, error) {
	start, err := readTime(reader, "start")
	if err != nil {
		return common.Time{}, common.Time{}, err
	}
	end, err := readTime(reader, "end")
	if err != nil {
		return common.Time{}, common.Time{}, err
	}
	return start, end, nil
}

func readOffset(reader *bufio.Reader) (common.Hour, common.Minute, bool, error) {
	hourStr := readLine(reader, "Enter offset hours: ")
	hourVal, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid hours: %w", err)
	}
	negative := hourVal < 0
	if negative {
		hourVal = -hourVal
	}
	hourValU8, err := toUint8(hourVal)
	if err != nil {
		return 0, 0, false, err
	}
	hour, err := common.NewHour(hourValU8)
	if err != nil {
		return 0, 0, false, err
	}

	minuteStr := readLine(reader, "Enter offset minutes (0-59): ")
	minuteVal, err := strconv.Atoi(minuteStr)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid minutes: %w", err)
	}
	minuteValU8, err := toUint8(minuteVal)
	if err != nil {
		return 0, 0, false, err
	}
	minute, err := common.NewMinute(minuteValU8)
	if err != nil {
		return 0, 0, false, err
	}

	return hour, minute, negative, nil
}

func readBookingID(reader *bufio.Reader) (uuid.UUID, error) {
	idStr := readLine(reader, "Enter Booking ID: ")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid booking ID: %w", err)
	}
	return id, nil
}
