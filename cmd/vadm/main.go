/*
Vadm starts an interactive VidAdmin console session.

It connects to a VidAdmin backend, resumes the session saved by the previous
run if there is one, and shows the history of processed videos. Admins can
open the admin dashboard to manage users and videos. Commands are read from
stdin until input ends or the "QUIT" command is given.

Usage:

	vadm [flags]

The flags are:

	-v, --version
		Give the current version of VidAdmin and then exit.

	-c, --config FILE
		Read settings from the given TOML file. Defaults to .vadm/config.toml
		in the user's home directory; that default is skipped without
		complaint if it does not exist.

	-a, --api URL
		Use the backend API rooted at URL, for example
		"http://localhost:8080/api". Overrides the config file and the
		VADM_API_URL environment variable.

	-u, --user USERNAME
		Log in as USERNAME at start, asking for the password, instead of
		resuming the saved session.

	-l, --lang LANGUAGE
		Use LANGUAGE ("en" or "ru") for the interface when no language has
		been chosen with the LANG command yet.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

Settings not given in the config file are read from the environment, and a
.env file in the working directory is loaded into the environment first. Once
a session has started, type "HELP" for an explanation of the commands.
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dekarrin/vadm"
	"github.com/dekarrin/vadm/internal/config"
	"github.com/dekarrin/vadm/internal/logging"
	"github.com/dekarrin/vadm/internal/version"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConsoleError indicates an unsuccessful program execution due to a
	// problem while the console was running.
	ExitConsoleError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the console.
	ExitInitError
)

var (
	returnCode  int = ExitSuccess
	flagVersion     = pflag.BoolP("version", "v", false, "Gives the version info")
	flagConfig      = pflag.StringP("config", "c", "", "the TOML file to read settings from")
	flagAPI         = pflag.StringP("api", "a", "", "the base URL of the backend API")
	flagUser        = pflag.StringP("user", "u", "", "log in as the given user at start")
	flagLang        = pflag.StringP("lang", "l", "", "the interface language to use if none has been chosen")
	flagDirect      = pflag.BoolP("direct", "d", false, "force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	cfgPath := *flagConfig
	mustExist := true
	if cfgPath == "" {
		cfgPath = config.DefaultConfigFile()
		mustExist = false
	}
	cfg, err := config.Load(cfgPath, mustExist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	if pflag.Lookup("api").Changed {
		cfg.APIURL = *flagAPI
	}
	if pflag.Lookup("lang").Changed {
		cfg.Language = *flagLang
	}
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	log, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel, "vadm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer logCloser.Close()

	eng, initErr := vadm.New(os.Stdin, os.Stdout, cfg, vadm.Options{
		ForceDirect: *flagDirect,
		LoginAs:     *flagUser,
		Log:         &log,
	})
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	log.Info().Str("version", version.Current).Str("api", cfg.APIURL).Msg("starting console")

	err = eng.RunUntilQuit(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConsoleError
		return
	}
}
