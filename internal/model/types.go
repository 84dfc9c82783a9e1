package model

import "time"

type AttackEvent struct {
	Customer  string    `json:"customer"`
	StartDate time.Time `json:"start_date"`
	SrcIP     string    `json:"src_ip,omitempty"`
	Category  string    `json:"category,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

type DailyCount struct {
	Day        string    `json:"day"`
	Date       time.Time `json:"date"`
	Count      int64     `json:"count"`
	Annotation string    `json:"annotation,omitempty"`
}

type WeeklyWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Total int64     `json:"total"`
}

type TopSource struct {
	SrcIP string `json:"src_ip"`
	Count int64  `json:"count"`
}

type ReportResult struct {
	Customer string       `json:"customer"`
	Days     []DailyCount `json:"days"`
	Week     WeeklyWindow `json:"week"`
	DailySum int64        `json:"daily_sum"`
	Matches  bool         `json:"matches"`
	Top      []TopSource  `json:"top,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}
