package game

import "time"

type tickerGen struct{}

func NewTickerGen() tickerGen {
	return tickerGen{}
}

func (tickerGen) Create(d time.Duration) <-chan time.Time {
	return time.NewTicker(d).C
}
