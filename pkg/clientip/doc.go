// Package clientip resolves the address of the client behind reverse proxies
// so upload logs can name who sent a batch.
//
// Headers are examined in order until one holds a valid IP. The default order
// is CF-Connecting-IP, X-Forwarded-For (first valid entry), X-Real-IP, and
// RemoteAddr is the fallback. Only enable the headers your proxy actually
// sets: anything else can be forged by clients.
//
//	r.Use(clientip.Middleware())
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
package clientip
