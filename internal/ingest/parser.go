package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"attackreport/internal/model"
)

type EventFields struct {
	Timestamp string
	Customer  string
	SrcIP     string
	Category  string
	Severity  string
	Raw       string
}

type Parser struct {
	defaultCustomer string
}

func NewParser(defaultCustomer string) *Parser {
	return &Parser{defaultCustomer: defaultCustomer}
}

// ParseLine accepts one attack event as a JSON object or a CSV record
// (timestamp,customer,src_ip,category,severity). Blank lines and CSV headers
// yield (nil, nil).
func (p *Parser) ParseLine(line string) (*EventFields, error) {
	trim := strings.TrimSpace(line)
	if trim == "" {
		return nil, nil
	}
	if looksLikeJSON(trim) {
		fields, err := parseJSON(trim)
		if err != nil {
			return nil, err
		}
		fields.Raw = line
		return fields, nil
	}
	fields, err := parseCSV(trim)
	if err != nil || fields == nil {
		return fields, err
	}
	fields.Raw = line
	return fields, nil
}

// Normalize validates the parsed fields into an AttackEvent, falling back to
// the parser's default customer when the event does not name one.
func (p *Parser) Normalize(fields EventFields) (model.AttackEvent, error) {
	customer := strings.TrimSpace(fields.Customer)
	if customer == "" {
		customer = p.defaultCustomer
	}
	if customer == "" {
		return model.AttackEvent{}, errors.New("event has no customer and no default configured")
	}
	if strings.TrimSpace(fields.Timestamp) == "" {
		return model.AttackEvent{}, errors.New("event has no timestamp")
	}
	ts, err := ParseTimestamp(fields.Timestamp)
	if err != nil {
		return model.AttackEvent{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return model.AttackEvent{
		Customer:  customer,
		StartDate: ts.UTC(),
		SrcIP:     strings.TrimSpace(fields.SrcIP),
		Category:  strings.TrimSpace(fields.Category),
		Severity:  strings.TrimSpace(fields.Severity),
		Raw:       fields.Raw,
	}, nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func parseJSON(line string) (*EventFields, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, err
	}
	flat := make(map[string]string, len(obj))
	for key, val := range obj {
		flat[strings.ToLower(key)] = fmt.Sprint(val)
	}
	return &EventFields{
		Timestamp: firstNonEmpty(flat, "start_date", "startdate", "timestamp", "time", "ts"),
		Customer:  firstNonEmpty(flat, "customer", "cust_id", "custid", "tenant"),
		SrcIP:     firstNonEmpty(flat, "src_ip", "srcip", "source", "attacker"),
		Category:  firstNonEmpty(flat, "category", "attack_type", "attacktype", "type"),
		Severity:  firstNonEmpty(flat, "severity", "level"),
	}, nil
}

func parseCSV(line string) (*EventFields, error) {
	r := csv.NewReader(strings.NewReader(line))
	rec, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) < 2 {
		return nil, fmt.Errorf("csv record needs at least timestamp and customer: %q", line)
	}
	if strings.EqualFold(strings.TrimSpace(rec[0]), "timestamp") {
		return nil, nil
	}
	fields := &EventFields{Timestamp: rec[0], Customer: rec[1]}
	if len(rec) > 2 {
		fields.SrcIP = rec[2]
	}
	if len(rec) > 3 {
		fields.Category = rec[3]
	}
	if len(rec) > 4 {
		fields.Severity = rec[4]
	}
	return fields, nil
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(m[key]); v != "" {
			return v
		}
	}
	return ""
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
