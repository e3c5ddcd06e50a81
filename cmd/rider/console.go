package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/rider/authclient"
	"github.com/ridecab/service-ride/internal/rider/catalog"
	"github.com/ridecab/service-ride/internal/rider/shell"
)

const helpText = `commands:
  login <email> <password>             register <email> <password> [name]
  logout
  from <text> | to <text>              search pickup / drop
  pick-from <n> | pick-to <n>          choose a search result
  suggest <place>                      quick-pick a suggestion
  swap | clear-from | clear-to
  cars | car <id> | key <name>         car types (keys: ArrowUp, ArrowDown, Enter, ...)
  map | refresh | cluster <n> | close-preview
  book | confirm | cancel | dismiss
  status | sidebar | help | quit`

// Accounts signs riders in and out.
type Accounts interface {
	Login(ctx context.Context, email, password string) authclient.Result
	Register(ctx context.Context, email, password, name string) authclient.Result
}

// console maps text commands onto one rider session.
type console struct {
	shell    *shell.Shell
	accounts Accounts
	out      io.Writer
}

func newConsole(s *shell.Shell, accounts Accounts, out io.Writer) *console {
	return &console{shell: s, accounts: accounts, out: out}
}

// exec runs one command line. It reports false when the session should end.
func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		c.println(helpText)

	case "login":
		if len(args) < 2 {
			c.println("usage: login <email> <password>")
			return true
		}
		c.printResult(c.accounts.Login(ctx, args[0], args[1]))
	case "register":
		if len(args) < 2 {
			c.println("usage: register <email> <password> [name]")
			return true
		}
		c.printResult(c.accounts.Register(ctx, args[0], args[1], strings.Join(args[2:], " ")))
	case "logout":
		c.shell.Logout()
		c.println("signed out")

	case "from":
		c.shell.Search().TypePickup(ctx, rest)
		c.printResults(c.shell.Search().View().Pickup.Results)
	case "to":
		c.shell.Search().TypeDrop(ctx, rest)
		c.printResults(c.shell.Search().View().Drop.Results)
	case "pick-from":
		c.choose(args, c.shell.Search().ChoosePickup)
	case "pick-to":
		c.choose(args, c.shell.Search().ChooseDrop)
	case "suggest":
		c.shell.Search().Suggest(ctx, rest)
		v := c.shell.Search().View()
		c.printResults(append(v.Pickup.Results, v.Drop.Results...))
	case "swap":
		if !c.shell.Search().Swap() {
			c.println("pick both locations first")
		}
	case "clear-from":
		c.shell.Search().ClearPickup()
	case "clear-to":
		c.shell.Search().ClearDrop()

	case "cars":
		c.printCatalog()
	case "car":
		if !c.shell.Catalog().Select(rest) {
			c.println(c.shell.Catalog().View().Hint)
		}
	case "key":
		if !c.shell.HandleKey(rest) && !c.shell.Catalog().HandleKey(catalog.ParseKey(rest)) {
			c.println("key ignored")
		}

	case "map":
		c.printMap()
	case "refresh":
		c.shell.Map().Refresh(ctx)
		c.printMap()
	case "cluster":
		c.choose(args, c.shell.Map().ClickCluster)
	case "close-preview":
		c.shell.Map().ClosePreview()

	case "book":
		if !c.shell.Booking().RequestConfirmation() {
			c.println("choose pickup, drop and car first")
		}
	case "confirm":
		if !c.shell.Booking().Confirm() {
			c.println("nothing to confirm")
		}
	case "cancel":
		c.shell.Booking().Cancel()
	case "dismiss":
		c.shell.Booking().Dismiss()
		c.shell.DismissNotice()

	case "status":
		c.printStatus()
	case "sidebar":
		c.shell.ToggleSidebar()

	default:
		c.printf("unknown command %q, try help\n", cmd)
	}
	return true
}

func (c *console) choose(args []string, pick func(int) bool) {
	if len(args) != 1 {
		c.println("usage: <command> <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || !pick(n-1) {
		c.println("no such entry")
	}
}

func (c *console) printResult(r authclient.Result) {
	if r.Success {
		c.println(c.shell.Greeting())
		return
	}
	c.println(r.Error)
}

func (c *console) printResults(results []ride.Location) {
	if len(results) == 0 {
		c.println("no results")
		return
	}
	for i, loc := range results {
		c.printf("%d. %s (%.4f, %.4f)\n", i+1, loc.Name, loc.Lat, loc.Lng)
	}
}

func (c *console) printCatalog() {
	v := c.shell.Catalog().View()
	c.println(v.Hint)
	for i, opt := range v.Options {
		mark := " "
		switch {
		case opt.ID == v.SelectedID:
			mark = "*"
		case opt.ID == v.PendingID:
			mark = "~"
		case i == v.Focus:
			mark = ">"
		}
		c.printf("%s %-8s %-12s %s  %s  %d seats\n", mark, opt.ID, opt.Name, opt.Price, opt.ETA, opt.Seats)
	}
}

func (c *console) printMap() {
	v := c.shell.Map().View()
	c.printf("center %.4f,%.4f zoom %d\n", v.Center.Lat, v.Center.Lng, v.Zoom)
	if v.Notice != "" {
		c.println(v.Notice)
	}
	for i, m := range v.Markers {
		c.printf("%d. %s at %.4f,%.4f\n", i+1, m.Label, m.Position.Lat, m.Position.Lng)
	}
	if v.Preview != nil {
		c.printf("preview: %s (%s)\n", v.Preview.Driver, v.Preview.Type)
	}
}

func (c *console) printStatus() {
	v := c.shell.View()
	if !v.SignedIn {
		c.println("signed out")
		return
	}
	c.printf("%s [%s]\n", v.Greeting, v.Initials)
	c.printf("pickup: %s\ndrop:   %s\ncar:    %s\n",
		locationName(v.Selection.Pickup), locationName(v.Selection.Drop), carName(v.Selection.Car))
	c.printf("booking: %s", v.Booking.Status)
	if v.Booking.BookingID != "" {
		c.printf(" %s", v.Booking.BookingID)
	}
	if v.Booking.Message != "" {
		c.printf(" (%s)", v.Booking.Message)
	}
	c.println("")
	if v.Notice != nil {
		c.printf("notice: %s %s %s\n", v.Notice.Title, v.Notice.BookingID, v.Notice.Message)
	}
}

func locationName(loc *ride.Location) string {
	if loc == nil {
		return "-"
	}
	return loc.Name
}

func carName(car *ride.VehicleOption) string {
	if car == nil {
		return "-"
	}
	return car.Name
}

func (c *console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
