// Package config loads the render server configuration.
//
// Settings come from, in increasing precedence: built-in defaults, the
// optional movieflair.yaml file, environment variables, and command-line
// flags. Environment variables use the MOVIEFLAIR_ prefix with dots replaced
// by underscores (MOVIEFLAIR_RENDER_TIMEOUT); PORT and APP_ENV are honored
// for the port and the build mode.
//
// # Configuration File Structure
//
//	mode: production
//	port: 5173
//	base_url: https://www.movieflair.de
//	render:
//	  timeout: 10s
//	shell:
//	  dist_dir: dist/client
//	  file: index.html
//	classifier:
//	  forced_paths: [/neue-trailer, /kostenlose-filme]
//	sitemap:
//	  database: data/catalog.db
//	  redis_addr: localhost:6379
//	  cache_ttl: 24h
//
// # Usage
//
//	cfg, err := config.Load(config.LoadOptions{File: cfgFile})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
