package health

import (
	"strings"

	"github.com/samber/lo"
)

func countSessions(sessions SessionLister) SessionsInfo {
	info := SessionsInfo{ByChannel: map[string]int{}}
	if sessions == nil {
		return info
	}
	keys := sessions.Keys()
	info.Total = len(keys)
	info.ByChannel = lo.CountValuesBy(keys, func(key string) string {
		name, _, _ := strings.Cut(key, ":")
		return name
	})
	return info
}
