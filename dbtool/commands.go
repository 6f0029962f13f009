package dbtool

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkfeed/app/repositories"
)

// ErrUsage is returned for a missing or unknown subcommand.
var ErrUsage = errors.New("invalid db command")

// Tool runs maintenance commands against the Badger database.
type Tool struct {
	dbPath    string
	backupDir string
	in        *bufio.Reader
	out       io.Writer
	now       func() time.Time
}

func New(dbPath, backupDir string, in io.Reader, out io.Writer) *Tool {
	return &Tool{
		dbPath:    dbPath,
		backupDir: backupDir,
		in:        bufio.NewReader(in),
		out:       out,
		now:       time.Now,
	}
}

// HandleCommand handles db subcommands
func (t *Tool) HandleCommand(args []string) error {
	if len(args) < 1 {
		t.printHelp()
		return ErrUsage
	}

	fs := flag.NewFlagSet("db "+args[0], flag.ContinueOnError)
	fs.SetOutput(t.out)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "init":
		return t.initDb()
	case "clean":
		return t.clean(*yes)
	case "backup":
		_, err := t.backup()
		return err
	case "restore":
		if fs.NArg() < 1 {
			fmt.Fprintln(t.out, "Error: backup file path required for restore")
			return ErrUsage
		}
		return t.restore(fs.Arg(0), *yes)
	case "stats":
		return t.stats()
	case "help":
		t.printHelp()
		return nil
	default:
		fmt.Fprintf(t.out, "Unknown db command: %s\n\n", args[0])
		t.printHelp()
		return ErrUsage
	}
}

func (t *Tool) printHelp() {
	helpText := `Usage: inkfeed db <command> [options]

Commands:
  init                           Initialize a new empty database
  clean [--yes]                  Remove the database
  backup                         Create a backup of the database
  restore [--yes] <file>         Restore database from backup
  stats                          Print post and user counts
  help                           Display this help message
`
	fmt.Fprintln(t.out, helpText)
}

// confirm asks a [y/N] question unless yes is set.
func (t *Tool) confirm(question string, yes bool) bool {
	if yes {
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	response, _ := t.in.ReadString('\n')
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

func (t *Tool) exists() bool {
	_, err := os.Stat(t.dbPath)
	return err == nil
}

func (t *Tool) open() (*repositories.Store, error) {
	return repositories.NewStore(t.dbPath)
}

// clean removes the database
func (t *Tool) clean(yes bool) error {
	if !t.exists() {
		fmt.Fprintln(t.out, "Database is already clean (does not exist)")
		return nil
	}

	if !t.confirm("Are you sure you want to clean the database? This cannot be undone.", yes) {
		fmt.Fprintln(t.out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(t.dbPath); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintln(t.out, "Database cleaned successfully")
	return nil
}

// initDb initializes a new empty database
func (t *Tool) initDb() error {
	if t.exists() {
		fmt.Fprintln(t.out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	if err := os.MkdirAll(t.dbPath, 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	store, err := t.open()
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return err
	}

	fmt.Fprintln(t.out, "Database initialized successfully")
	return nil
}

// backup writes the database to a timestamped file and returns its path.
func (t *Tool) backup() (string, error) {
	if !t.exists() {
		fmt.Fprintln(t.out, "No database exists to backup")
		return "", nil
	}

	if err := os.MkdirAll(t.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	store, err := t.open()
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(t.backupDir, fmt.Sprintf("backup_%d.db", t.now().Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", err
	}

	fmt.Fprintf(t.out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restore replaces the database with the content of backupFile
func (t *Tool) restore(backupFile string, yes bool) error {
	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	if t.exists() {
		if !t.confirm("Existing database found. Do you want to replace it?", yes) {
			fmt.Fprintln(t.out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(t.dbPath); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}

	if err := os.MkdirAll(t.dbPath, 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	store, err := t.open()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Restore(f); err != nil {
		return err
	}

	fmt.Fprintln(t.out, "Database restored successfully")
	return nil
}

func (t *Tool) stats() error {
	if !t.exists() {
		fmt.Fprintln(t.out, "No database exists")
		return nil
	}

	store, err := t.open()
	if err != nil {
		return err
	}
	defer store.Close()

	posts, err := store.Posts().Count()
	if err != nil {
		return err
	}
	users, err := store.Users().Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "posts: %d\nusers: %d\n", posts, users)
	return nil
}
