package models

import "time"

// NewsRecord is a single news headline attached to a ticker. A missing text
// field is the empty string and a missing timestamp is the zero time.
type NewsRecord struct {
	Headline  string    `json:"headline"`
	Publisher string    `json:"publisher"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"date"`
	Stock     string    `json:"stock"`
}

// AlignedNews is a NewsRecord mapped onto the trading calendar.
type AlignedNews struct {
	NewsRecord
	TradingDate   time.Time   `json:"trading_date"`
	ForwardWindow []time.Time `json:"forward_window"`
}

// HeadlineFeatures holds simple text statistics of a headline.
type HeadlineFeatures struct {
	Length    int `json:"headline_length"`
	WordCount int `json:"word_count"`
}
