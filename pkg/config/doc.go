// Package config loads typed application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - Values may come from the process environment and from `.env` files. The
//     default `.env` in the working directory is optional; files passed with
//     WithEnvFiles are mandatory.
//   - Files never override the process environment and are never written into it.
//   - Configuration is returned by value. There is no package-level cache, so the
//     caller owns the single initialization point and passes the value on.
//
// # Usage
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
//	if err != nil {
//	    return err
//	}
//
// Tests can bypass the process environment entirely:
//
//	cfg, err := config.Load[Config](config.WithEnvironment(map[string]string{
//	    "HTTP_ADDR": ":9090",
//	}))
//
// # Errors
//
// ErrParsingConfig is joined with the underlying parser error, ErrReadingEnvFile
// wraps dotenv read failures. Both work with errors.Is.
package config
