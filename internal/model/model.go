// Package model defines the data structures shared across flickrfeed: the parsed FeedItem and the plugin option descriptors.
package model

import "time"

type FeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Description string    `json:"description"`
}

type OptionType string

const (
	OptionTypeTextbox  OptionType = "textbox"
	OptionTypeCheckbox OptionType = "checkbox"
)

// Option describes one user-configurable plugin setting as shown on the admin page.
type Option struct {
	Label string     `json:"label" yaml:"label"`
	Key   string     `json:"key" yaml:"key"`
	Type  OptionType `json:"type" yaml:"type"`
	Order int        `json:"order" yaml:"order"`
	Desc  string     `json:"desc" yaml:"desc"`
}
