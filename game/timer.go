package game

// countdown is the room's single timer. It is driven by the tick channel
// inside the game loop, so starting, cancelling and expiring all happen on
// the room goroutine and a cancelled countdown can never fire late.
type countdown struct {
	active    bool
	remaining int
	// silent countdowns (the results delay) do not broadcast ticks.
	silent   bool
	onExpire func()
}

func (r *Room) startCountdown(seconds int, silent bool, onExpire func()) {
	r.countdown = countdown{
		active:    true,
		remaining: seconds,
		silent:    silent,
		onExpire:  onExpire,
	}
}

func (r *Room) cancelCountdown() {
	r.countdown = countdown{}
}

func (r *Room) handleTick() {
	if !r.countdown.active {
		return
	}

	r.countdown.remaining--
	if !r.countdown.silent {
		r.broadcast(makeEventTimerTick(r.countdown.remaining))
	}

	if r.countdown.remaining <= 0 {
		expire := r.countdown.onExpire
		r.cancelCountdown()
		expire()
	}
}
