// Package ingest loads contact plans into the routing core from local
// CSV or YAML files and from remote SODA datasets. Ingestion is lenient:
// comment lines, blank lines, and malformed rows are skipped rather than
// failing the load, and the number of skipped rows is reported back.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// ErrNoContacts is returned when a source yields zero usable rows.
var ErrNoContacts = errors.New("ingest: no contacts loaded")

// csvFieldCount is the row shape shared by every ingestion source:
// id, from, to, t_start, t_end, owlt, rate_bps, setup_s, residual_bytes.
const csvFieldCount = 9

// LoadCSVFile reads a contact plan from a CSV file. It returns the
// parsed contacts and the number of malformed rows that were skipped;
// comment and blank lines are ignored without being counted.
func LoadCSVFile(path string) ([]model.Contact, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open contact plan: %w", err)
	}
	defer f.Close()

	contacts, skipped, err := ParseCSV(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("parse %s: %w", path, err)
	}
	return contacts, skipped, nil
}

// ParseCSV reads contact rows from r. Lines starting with '#' and blank
// lines are ignored silently; rows that do not parse into the nine
// contact fields count as skipped. Whitespace around fields is
// tolerated.
func ParseCSV(r io.Reader) ([]model.Contact, int, error) {
	var contacts []model.Contact
	skipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c, ok := parseContactRow(line)
		if !ok {
			skipped++
			continue
		}
		contacts = append(contacts, c)
	}
	if err := scanner.Err(); err != nil {
		return contacts, skipped, fmt.Errorf("read contact rows: %w", err)
	}
	return contacts, skipped, nil
}

func parseContactRow(line string) (model.Contact, bool) {
	var c model.Contact

	parts := strings.Split(line, ",")
	if len(parts) != csvFieldCount {
		return c, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var err error
	if c.ID, err = strconv.Atoi(parts[0]); err != nil {
		return c, false
	}
	if c.From, err = strconv.Atoi(parts[1]); err != nil {
		return c, false
	}
	if c.To, err = strconv.Atoi(parts[2]); err != nil {
		return c, false
	}

	floats := [6]*float64{&c.TStart, &c.TEnd, &c.OWLT, &c.RateBps, &c.SetupS, &c.ResidualBytes}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(parts[3+i], 64)
		if err != nil {
			return c, false
		}
		*dst = v
	}
	return c, true
}
