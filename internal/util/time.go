package util

import "time"

// Now retorna o horário atual em UTC.
func Now() time.Time {
	return time.Now().UTC()
}
