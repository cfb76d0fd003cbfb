package radio

const (
	// MinChannel and MaxChannel bound the 2.4 GHz channel plan.
	MinChannel = 1
	MaxChannel = 14

	baseFrequencyMHz = 2412
	channelSpacing   = 5
)

// ValidChannel reports whether ch is a 2.4 GHz channel number.
func ValidChannel(ch int) bool {
	return ch >= MinChannel && ch <= MaxChannel
}

// FrequencyMHz returns the centre frequency of ch using the linear
// 5 MHz plan.  Channel 14 is reported on the same plan (2477 MHz).
func FrequencyMHz(ch int) int {
	return baseFrequencyMHz + (ch-1)*channelSpacing
}

// Channels returns every valid channel in sweep order.
func Channels() []int {
	out := make([]int, 0, MaxChannel)
	for ch := MinChannel; ch <= MaxChannel; ch++ {
		out = append(out, ch)
	}
	return out
}
