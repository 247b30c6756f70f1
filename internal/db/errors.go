package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrWrongType   = errors.New("db: value is not an integer")
	ErrClosed      = errors.New("db: store closed")
)

// Op constants map to Redis command names for error context.
const (
	OpPing      = "PING"
	OpDel       = "DEL"
	OpHGetAll   = "HGETALL"
	OpHSet      = "HSET"
	OpExists    = "EXISTS"
	OpGet       = "GET"
	OpSet       = "SET"
	OpIncrBy    = "INCRBY"
	OpExpire    = "EXPIRE"
	OpZAdd      = "ZADD"
	OpZRem      = "ZREM"
	OpZRevRange = "ZREVRANGE"
	OpZCard     = "ZCARD"
	OpLPush     = "LPUSH"
	OpLRange    = "LRANGE"
	OpLTrim     = "LTRIM"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
