// Command admin manages staff rights and bans from the shell. The API never
// grants admin rights itself.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"craftnexus/internal/config"
	"craftnexus/internal/database"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `usage: admin <command> [args]

  promote <user>              grant admin rights
  demote <user>               revoke admin rights
  ban <user> -reason "..."    ban a user from posting
  unban <user>                lift a ban
  list [-banned]              list admins, or banned users

<user> is a username or the identity-provider user id. Users must have
signed in once so that their profile exists.`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "promote", "demote":
		user := mustFindUser(db, requireArg(cmd, args))
		setAdmin(db, user, cmd == "promote")
	case "ban", "unban":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		reason := fs.String("reason", "", "shown to moderators (required for ban)")
		ref := requireArg(cmd, args)
		_ = fs.Parse(args[1:])
		setBan(ctx, db, mustFindUser(db, ref), cmd == "ban", *reason)
	case "list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		banned := fs.Bool("banned", false, "list banned users instead of admins")
		_ = fs.Parse(args)
		list(db, *banned)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
}

func requireArg(cmd string, args []string) string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		log.Fatalf("%s: missing <user>", cmd)
	}
	return args[0]
}

// mustFindUser resolves a uuid or a case-insensitive username.
func mustFindUser(db *gorm.DB, ref string) *models.User {
	q := db.Model(&models.User{})
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("LOWER(username) = LOWER(?)", ref)
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("user %s not found (they must sign in once first)", ref)
		}
		log.Fatalf("look up %s: %v", ref, err)
	}
	return &user
}

func setAdmin(db *gorm.DB, user *models.User, admin bool) {
	if user.IsAdmin == admin {
		fmt.Printf("%s already has admin=%t\n", user.Username, admin)
		return
	}
	if err := db.Model(user).Update("is_admin", admin).Error; err != nil {
		log.Fatalf("update %s: %v", user.Username, err)
	}
	fmt.Printf("%s admin=%t\n", user.Username, admin)
}

// setBan goes through the moderation service so the same validation and
// cache invalidation apply as for bans issued over the API.
func setBan(ctx context.Context, db *gorm.DB, user *models.User, banned bool, reason string) {
	mod := service.NewModerationService(
		repository.NewReportRepository(db),
		repository.NewCommentRepository(db),
		repository.NewForumRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	updated, err := mod.SetBan(ctx, service.BanInput{UserID: user.ID, Banned: banned, Reason: reason})
	if err != nil {
		log.Fatalf("ban %s: %v", user.Username, err)
	}
	fmt.Printf("%s banned=%t\n", updated.Username, updated.IsBanned)
}

func list(db *gorm.DB, banned bool) {
	column := "is_admin"
	if banned {
		column = "is_banned"
	}
	var users []models.User
	if err := db.Where(column+" = ?", true).Order("username").Find(&users).Error; err != nil {
		log.Fatalf("list users: %v", err)
	}
	if len(users) == 0 {
		fmt.Println("none")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tID\tEMAIL\tBAN REASON")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Username, u.ID, u.Email, u.BanReason)
	}
	_ = tw.Flush()
}
