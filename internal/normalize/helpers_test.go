package normalize

import (
	"time"

	"github.com/tidwall/gjson"
)

func parseTimeJSON(raw string) (time.Time, bool) {
	return parseTime(gjson.Parse(raw))
}
