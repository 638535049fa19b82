package risk

import "github.com/reflecta/reflecta-backend/internal/types"

// ChannelsFor selects notification channels by risk level. Higher levels
// add channels, never swap them.
func ChannelsFor(riskLevel string) []string {
	channels := []string{types.ChannelInApp}
	switch riskLevel {
	case types.RiskLevelHigh:
		channels = append(channels, types.ChannelEmail)
	case types.RiskLevelCritical:
		channels = append(channels, types.ChannelEmail, types.ChannelSMS)
	}
	return channels
}
