package logging

import "time"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Field helpers for the layout domain

func Component(name string) Field {
	return String("component", name)
}

func Instance(id string) Field {
	return String("instance", id)
}

func NodeCount(n int) Field {
	return Int("nodes", n)
}

func LinkCount(n int) Field {
	return Int("links", n)
}

func Alpha(a float64) Field {
	return Float64("alpha", a)
}

func Ticks(n int) Field {
	return Int("ticks", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
