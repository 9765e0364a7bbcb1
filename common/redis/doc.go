// Package redis classifies Redis/Valkey failures for retry decisions.
//
// Server replies such as LOADING, READONLY, CLUSTERDOWN, TRYAGAIN, and
// MASTERDOWN indicate states the server works through on its own, so another
// attempt is worthwhile. Key absence (redis.Nil) is a result rather than a
// failure and is never retried. The package only inspects errors produced by
// go-redis callers; it never connects anywhere itself.
package redis
