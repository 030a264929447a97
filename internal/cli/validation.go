package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/levelup/internal/ports/primary"
)

// parseID parses a numeric entity id from a positional argument.
func parseID(arg, entityType string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID '%s'. Expected a positive number", entityType, arg)
	}
	return id, nil
}

// parseTags parses signal=strength pairs. A bare signal name means strength 1.
func parseTags(args []string) ([]primary.SignalTag, error) {
	tags := make([]primary.SignalTag, 0, len(args))
	for _, arg := range args {
		name, raw, hasStrength := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid tag '%s'. Expected signal=strength", arg)
		}

		strength := 1
		if hasStrength {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("invalid strength in '%s'. Expected a number 1-3", arg)
			}
			strength = n
		}
		tags = append(tags, primary.SignalTag{SignalName: name, Strength: strength})
	}
	return tags, nil
}
