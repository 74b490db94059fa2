package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		Build        string
		AppName      string
		WorkDir      string
		RollbarToken string

		Server    ServerConfig
		Database  DatabaseConfig
		Storage   StorageConfig
		Identity  IdentityConfig
		Favorites FavoritesConfig
		Email     EmailConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine          string // firestore | mongo | memory
		ProjectID       string
		CredentialsFile string
		MongoURI        string
		MongoName       string
	}

	StorageConfig struct {
		Bucket        string
		Region        string
		Endpoint      string
		AccessKey     string
		SecretKey     string
		PublicBaseURL string
		KeyPrefix     string
		MaxUploadSize int64
	}

	IdentityConfig struct {
		JWTPublicKey  string // PEM
		Issuer        string
		AdminEmails   []string
		ManagerEmails []string
	}

	FavoritesConfig struct {
		BatchSize   int
		Concurrency int
		JoinField   string // id | name
	}

	EmailConfig struct {
		SendgridAPIKey   string
		DefaultFromEmail string
		DefaultFromName  string
	}
)

func (c EmailConfig) From() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromEmail}
}

func (c DatabaseConfig) IsMemory() bool {
	return c.Engine == "memory"
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if present) and the environment.
// Environment variables are prefixed with the uppercased env name, e.g. DEV_DATABASE_ENGINE.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Campuslink")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "memory")
	v.SetDefault("database.projectID", "")
	v.SetDefault("database.credentialsFile", "")
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	v.SetDefault("database.mongoName", "campuslink")

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accessKey", "")
	v.SetDefault("storage.secretKey", "")
	v.SetDefault("storage.publicBaseURL", "")
	v.SetDefault("storage.keyPrefix", "CampusLink")
	v.SetDefault("storage.maxUploadSize", int64(10<<20))

	v.SetDefault("identity.jwtPublicKey", "")
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.adminEmails", "")
	v.SetDefault("identity.managerEmails", "")

	v.SetDefault("favorites.batchSize", MaxInQueryValues)
	v.SetDefault("favorites.concurrency", 1)
	v.SetDefault("favorites.joinField", "id")

	v.SetDefault("email.sendgridAPIKey", "")
	v.SetDefault("email.defaultFromEmail", "noreply@localhost")
	v.SetDefault("email.defaultFromName", "Campuslink")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		WorkDir:      workDir,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:          CleanString(v.GetString("database.engine"), true /* lower */),
			ProjectID:       v.GetString("database.projectID"),
			CredentialsFile: v.GetString("database.credentialsFile"),
			MongoURI:        v.GetString("database.mongoURI"),
			MongoName:       v.GetString("database.mongoName"),
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("storage.bucket"),
			Region:        v.GetString("storage.region"),
			Endpoint:      v.GetString("storage.endpoint"),
			AccessKey:     v.GetString("storage.accessKey"),
			SecretKey:     v.GetString("storage.secretKey"),
			PublicBaseURL: strings.TrimRight(v.GetString("storage.publicBaseURL"), "/"),
			KeyPrefix:     strings.Trim(v.GetString("storage.keyPrefix"), "/"),
			MaxUploadSize: v.GetInt64("storage.maxUploadSize"),
		},
		Identity: IdentityConfig{
			JWTPublicKey:  v.GetString("identity.jwtPublicKey"),
			Issuer:        v.GetString("identity.issuer"),
			AdminEmails:   splitEmails(v.GetString("identity.adminEmails")),
			ManagerEmails: splitEmails(v.GetString("identity.managerEmails")),
		},
		Favorites: FavoritesConfig{
			BatchSize:   v.GetInt("favorites.batchSize"),
			Concurrency: v.GetInt("favorites.concurrency"),
			JoinField:   CleanString(v.GetString("favorites.joinField"), true /* lower */),
		},
		Email: EmailConfig{
			SendgridAPIKey:   v.GetString("email.sendgridAPIKey"),
			DefaultFromEmail: v.GetString("email.defaultFromEmail"),
			DefaultFromName:  v.GetString("email.defaultFromName"),
		},
	}
}

// splitEmails parses a comma-separated list of emails (like EXPO_PUBLIC_ADMIN_EMAILS).
func splitEmails(s string) []string {
	var emails []string
	for _, e := range strings.Split(s, ",") {
		if e = CleanEmail(e); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// getwd returns the directory containing go.mod, falling back to the current directory.
// go-test changes the working directory to the package being tested, this finds the project root again.
func getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
