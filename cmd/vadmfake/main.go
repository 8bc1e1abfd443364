/*
Vadmfake starts the in-memory VidAdmin reference backend so the console can be
tried out without a real deployment.

Usage:

	vadmfake [flags]
	vadmfake [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for HTTP requests and responds to them using
the same REST API as the real VidAdmin backend, rooted at /api. By default, it
will listen on localhost:8080. This can be changed with the --listen/-l flag (or
config via environment var). The flag argument must be either a full address
with port, such as "192.168.0.2:6001", or just the port preceeded by a colon,
such as ":6001".

All data is kept in memory and is lost when the server shuts down. An admin
user "admin" with password "password" is always created.

The flags are:

	-v, --version
		Give the current version of the reference backend and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		VADM_FAKE_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable VADM_FAKE_TOKEN_SECRET. If no secret is specified, a random
		secret is generated and all tokens become invalid at shutdown.

	--seed
		Also create the user "demo" (password "password") owning a handful of
		videos in every processing status.

	--log-level LEVEL
		Only log entries at LEVEL or above. Defaults to info.
*/
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/vadm/internal/logging"
	"github.com/dekarrin/vadm/internal/version"
	"github.com/dekarrin/vadm/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "VADM_FAKE_LISTEN_ADDRESS"
	EnvSecret = "VADM_FAKE_TOKEN_SECRET"
)

const (
	ExitSuccess = iota
	ExitInitError
	ExitServeError
)

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Give the current version of the reference backend and then exit.")
	flagListen   = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagSeed     = pflag.Bool("seed", false, "Create a demo user with sample videos.")
	flagLogLevel = pflag.String("log-level", "info", "Minimum level of log entries to write.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (VidAdmin v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(ExitInitError)
	}

	log := logging.New(os.Stderr, *flagLogLevel, "vadmfake")

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" && !strings.Contains(listenAddr, ":") {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(ExitInitError)
	}

	var cfg server.Config

	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr != "" {
		cfg.TokenSecret = server.StretchSecret([]byte(tokSecStr))
	} else {
		// use all 64 possible bytes if doing a generated secret
		cfg.TokenSecret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(cfg.TokenSecret); err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(ExitInitError)
		}

		log.Warn().Msg("using generated token secret; all tokens issued will become invalid at shutdown")
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not start server: %s\n", err.Error())
		os.Exit(ExitInitError)
	}
	defer srv.Close()

	ctx := context.Background()
	if *flagSeed {
		err = srv.Seed(ctx)
	} else {
		err = srv.SeedAdmin(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("could not create initial users")
		os.Exit(ExitInitError)
	}
	log.Info().Msg("added initial admin user with password 'password'")

	log.Info().Str("version", version.ServerCurrent).Msg("starting VidAdmin reference backend")
	if err := srv.ServeForever(listenAddr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(ExitServeError)
	}
}
