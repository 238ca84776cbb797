package mindmap

import "time"

// Config holds layout, insertion and gesture parameters
type Config struct {
	HorizontalSpacing float64 // distance between depth columns
	VerticalSpacing   float64 // distance between adjacent leaves
	NodeWidth         float64
	NodeHeight        float64
	Origin            Position // the root is always placed here

	HorizontalWeight float64 // insertion scoring: weight of the horizontal gap
	VerticalWeight   float64 // insertion scoring: weight of the vertical gap

	DoubleClickWindow time.Duration
}

// DefaultConfig returns the canvas defaults
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: 250,
		VerticalSpacing:   100,
		NodeWidth:         150,
		NodeHeight:        40,
		HorizontalWeight:  4,
		VerticalWeight:    1,
		DoubleClickWindow: 300 * time.Millisecond,
	}
}

// withDefaults fills zero fields so a partially built Config still lays out
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HorizontalSpacing <= 0 {
		c.HorizontalSpacing = d.HorizontalSpacing
	}
	if c.VerticalSpacing <= 0 {
		c.VerticalSpacing = d.VerticalSpacing
	}
	if c.NodeWidth <= 0 {
		c.NodeWidth = d.NodeWidth
	}
	if c.NodeHeight <= 0 {
		c.NodeHeight = d.NodeHeight
	}
	if c.HorizontalWeight <= 0 {
		c.HorizontalWeight = d.HorizontalWeight
	}
	if c.VerticalWeight <= 0 {
		c.VerticalWeight = d.VerticalWeight
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = d.DoubleClickWindow
	}
	return c
}
