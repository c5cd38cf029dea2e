package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/db"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/media"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/transport"
)

// create-staff makes a site admin, registering the user first when the username is free.
// The password is prompted for when it is not passed as a flag.
func main() {
	username := flag.String("username", "", "username of the staff account")
	email := flag.String("email", "", "email, required when the user does not exist yet")
	password := flag.String("password", "", "password, prompted for when empty")
	curator := flag.Bool("curator", false, "also grant site_curator")
	flag.Parse()

	if *username == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l, err := logger.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer l.Sync() //nolint:errcheck

	if err := run(context.Background(), cfg, l, *username, *email, *password, *curator); err != nil {
		l.Fatalw("create staff", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, l *zap.SugaredLogger, username, email, password string, curator bool) error {
	conn, err := db.NewGormClient(cfg, l)
	if err != nil {
		return err
	}
	store, err := media.NewStore(cfg, l)
	if err != nil {
		return err
	}
	users := service.NewUsers(conn, graph.NewGraph(conn, l), store, cfg, l)

	user := models.User{}
	res := conn.WithContext(ctx).Where("username = ?", username).First(&user)
	switch {
	case res.Error == nil:
		l.Infow("promoting existing user", "user", user.ID)
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		if email == "" {
			return errors.New("-email is required to create a new user")
		}
		if password == "" {
			if password, err = readPassword(); err != nil {
				return err
			}
		}
		in := service.UserCreate{Username: username, Email: email, Password: password}
		if err := transport.Validate(in); err != nil {
			return err
		}
		created, err := users.Register(ctx, nil, in)
		if err != nil {
			return errors.Wrap(err, "register")
		}
		user = *created
	default:
		return errors.Wrap(res.Error, "find user in db")
	}

	updates := map[string]interface{}{"site_admin": true}
	if curator {
		updates["site_curator"] = true
	}
	if err := conn.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "grant staff flags")
	}
	l.Infow("staff account ready", "user", user.ID, "username", user.Username)
	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	if len(password) == 0 {
		return "", errors.New("empty password")
	}
	return string(password), nil
}
