/*
Predserver starts the predicate-subscription HTTP server and begins
listening for new connections.

Usage:

	predserver [flags]
	predserver [flags] -l [[ADDRESS]:PORT]

Once started, predserver listens for HTTP requests and responds to them
per the REST API described in server's package documentation. By
default, it listens on localhost:8080. This can be changed with the
--listen/-l flag, the TUNAQUEST_LISTEN_ADDRESS environment variable, or
a --config file.

If a JWT token secret is not given, one will be automatically generated.
As a consequence, in this mode of operation all tokens are rendered
invalid as soon as the server shuts down. This is suitable for testing,
but must be given via flag, environment variable, or config file if
running in production.

The flags are:

	-v, --version
		Give the current version of predserver and then exit.

	-c, --config FILE
		Load server configuration from the given TOML file. Values given
		via other flags or environment variables override the file.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or
		:PORT format. If not given, will default to the value of
		environment variable BOOLPRED_LISTEN_ADDRESS, and if that is not
		given, the config file's listen_addr, and if that is not given,
		will default to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are
		less than 32 bytes in the secret, it will be repeated until it
		is. The maximum size is 64 bytes. If not given, will default to
		the value of environment variable BOOLPRED_TOKEN_SECRET, and
		then the config file's token_secret, and then a random secret.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the
		following: inmem, sqlite. inmem has no further params. sqlite
		needs the path to the data directory, e.g.
		sqlite:path/to/db_dir. If not given, will default to the value
		of environment variable BOOLPRED_DATABASE, then the config
		file's [database] table, then an in-memory database.
*/
package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/boolpred/internal/config"
	"github.com/dekarrin/boolpred/internal/version"
	"github.com/dekarrin/boolpred/server"
)

const (
	EnvListen = "BOOLPRED_LISTEN_ADDRESS"
	EnvSecret = "BOOLPRED_TOKEN_SECRET"
	EnvDB     = "BOOLPRED_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of predserver and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load server configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (predserver v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	cfg := server.Config{}
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := applyFlagsAndEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err)
		os.Exit(1)
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		os.Exit(1)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		log.Fatalf("FATAL could not connect to database: %s", err)
	}

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err)
	}
	log.Printf("INFO  Starting predserver %s on %s...", version.ServerCurrent, cfg.ListenAddr)

	if err := srv.ServeForever(); err != nil {
		log.Fatalf("FATAL server stopped: %s", err)
	}
}

// applyFlagsAndEnv overlays CLI flags, then environment variables, onto
// cfg in increasing precedence, mirroring the teacher's own
// flag > env > file priority for tqserver's listen/secret/db settings.
func applyFlagsAndEnv(cfg *server.Config) error {
	if listenAddr := os.Getenv(EnvListen); listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if pflag.Lookup("listen").Changed {
		cfg.ListenAddr = *flagListen
	}
	if cfg.ListenAddr != "" {
		if err := validateListenAddr(cfg.ListenAddr); err != nil {
			return err
		}
	}

	if secret := os.Getenv(EnvSecret); secret != "" {
		cfg.TokenSecret = normalizeSecret([]byte(secret))
	}
	if pflag.Lookup("secret").Changed && *flagSecret != "" {
		cfg.TokenSecret = normalizeSecret([]byte(*flagSecret))
	}
	if cfg.TokenSecret == nil {
		generated, err := randomSecret()
		if err != nil {
			return fmt.Errorf("could not generate token secret: %w", err)
		}
		cfg.TokenSecret = generated
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		dbType, path, err := parseDBConnString(dbConnStr)
		if err != nil {
			return err
		}
		cfg.DB = server.Database{Type: dbType, Path: path}
	}

	return nil
}

func validateListenAddr(listenAddr string) error {
	parts := strings.SplitN(listenAddr, ":", 2)
	if len(parts) != 2 {
		return errors.New("listen address is not in ADDRESS:PORT or :PORT format")
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return fmt.Errorf("%q is not a valid port number", parts[1])
	}
	return nil
}

func parseDBConnString(s string) (server.DBType, string, error) {
	if strings.EqualFold(s, "inmem") {
		return server.DatabaseInMemory, "", nil
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("not a valid DB string: %q", s)
	}

	dbType, err := server.ParseDBType(parts[0])
	if err != nil {
		return "", "", err
	}

	if dbType == server.DatabaseSQLite {
		if err := os.MkdirAll(parts[1], 0770); err != nil {
			return "", "", fmt.Errorf("could not build data directory: %w", err)
		}
	}

	return dbType, parts[1], nil
}

func normalizeSecret(secret []byte) []byte {
	for len(secret) < server.MinSecretSize {
		secret = append(secret, secret...)
	}
	if len(secret) > server.MaxSecretSize {
		secret = secret[:server.MaxSecretSize]
	}
	return secret
}

func randomSecret() ([]byte, error) {
	secret := make([]byte, server.MaxSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}
