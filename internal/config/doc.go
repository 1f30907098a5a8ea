// Package config provides configuration parsing for vango-history.
//
// The configuration is stored in history.json. Every field is optional;
// missing values fall back to the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "capacity": 50,
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "shutdownTimeout": "10s"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics",
//	    "namespace": "myapp"
//	  },
//	  "tracing": {
//	    "enabled": true,
//	    "tracerName": "myapp-history"
//	  },
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  }
//	}
//
// With tracing enabled, `vango-history serve` installs an OpenTelemetry
// SDK tracer provider that writes finished spans as JSON to stderr.
// Programs embedding pkg/server directly must install their own provider
// with otel.SetTracerProvider; otherwise spans are no-ops.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
