package wordsource

import "github.com/Roma7-7-7/readyword/internal/game"

var topics = []string{ //nolint:gochecknoglobals // static topic list
	"General Disaster Preparedness",
	"Earthquake Safety",
	"Flood Response",
	"Hurricane/Typhoon Preparedness",
	"Fire Safety",
	"Tsunami Awareness",
	"Drought Management",
	"Pandemic Preparedness",
	"First Aid and Medical Emergency",
	"Emergency Communication",
	"Evacuation Planning",
	"Emergency Supplies",
}

func Topics() []string {
	res := make([]string, len(topics))
	copy(res, topics)
	return res
}

func IsTopic(topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

func RandomTopic(rng game.Rand) string {
	return topics[rng.IntN(len(topics))]
}
