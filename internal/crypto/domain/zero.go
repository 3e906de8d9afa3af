package domain

// Zero overwrites key material in place.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
