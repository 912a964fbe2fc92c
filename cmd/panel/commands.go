package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"catalogadmin/catalog-panel/internal/authclient"
	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/panel"
	"catalogadmin/catalog-panel/internal/screen"
	"catalogadmin/catalog-panel/internal/session"
)

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "Login email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	remember := fs.Bool("remember", true, "Keep the session in the state file")
	returnTo := fs.String("return", "", "Page to open after login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(c.stdout, "Password: ")
		var err error
		password, err = readPassword(c.stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(c.stdout)
	}

	err := c.panel.Session.Login(ctx, authclient.Credentials{Email: *email, Password: password}, session.LoginOptions{
		Persist:   *remember,
		ReturnURL: *returnTo,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	sess, _ := c.panel.Session.Current()
	fmt.Fprintf(c.stdout, "Logged in as %s <%s>\n", sess.Name, sess.Email)
	if !*remember {
		fmt.Fprintln(c.stdout, "Session not remembered; later commands will need a new login.")
	}
	return nil
}

func (c *cli) logout() error {
	c.panel.Session.Logout()
	fmt.Fprintln(c.stdout, "Logged out")
	return nil
}

func (c *cli) whoami() error {
	sess, ok := c.panel.Session.Current()
	if !ok {
		return errNotLoggedIn
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", sess.UserID)
	fmt.Fprintf(tw, "Name\t%s\n", sess.Name)
	fmt.Fprintf(tw, "Email\t%s\n", sess.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", sess.Phone)
	fmt.Fprintf(tw, "Document\t%s\n", sess.Document)
	fmt.Fprintf(tw, "Role\t%s\n", sess.Role)
	return tw.Flush()
}

func (c *cli) menu() error {
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	for _, item := range panel.Menu() {
		fmt.Fprintf(tw, "%s\t%s\n", item.Label, item.Path)
	}
	return tw.Flush()
}

func (c *cli) categories(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: categories list | add <name> | edit <id> <name> | delete <id>")
	}
	s := c.panel.Categories

	switch args[0] {
	case "list":
		if err := s.Load(ctx); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, cat := range s.Items() {
			fmt.Fprintf(tw, "%d\t%s\n", cat.ID, cat.Name)
		}
		return tw.Flush()
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: categories add <name>")
		}
		created, err := s.Create(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Category %d created: %s\n", created.ID, created.Name)
		return nil
	case "edit":
		if len(args) < 3 {
			return fmt.Errorf("usage: categories edit <id> <name>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		updated, err := s.Update(ctx, model.Category{ID: id, Name: strings.Join(args[2:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Category %d updated: %s\n", updated.ID, updated.Name)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: categories delete <id>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Category %d deleted\n", id)
		return nil
	default:
		return fmt.Errorf("unknown categories action %q", args[0])
	}
}

type productFlags struct {
	fs         *flag.FlagSet
	name       *string
	price      *float64
	date       *string
	categories *string
}

func newProductFlags(c *cli, name string) productFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return productFlags{
		fs:         fs,
		name:       fs.String("name", "", "Product name"),
		price:      fs.Float64("price", 0, "Price"),
		date:       fs.String("date", "", "Registration date (YYYY-MM-DD)"),
		categories: fs.String("categories", "", "Comma separated category ids"),
	}
}

func (c *cli) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: products list | add [flags] | edit <id> [flags] | delete <id>")
	}
	s := c.panel.Products

	switch args[0] {
	case "list":
		if err := s.Load(ctx); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tREGISTERED\tCATEGORIES")
		for _, p := range s.Items() {
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\n", p.ID, p.Name, p.Price, p.RegistrationDate, categoryNames(p.Categories))
		}
		return tw.Flush()
	case "add":
		pf := newProductFlags(c, "products add")
		if err := pf.fs.Parse(args[1:]); err != nil {
			return err
		}
		ids, err := parseIDList(*pf.categories)
		if err != nil {
			return err
		}
		if err := s.Load(ctx); err != nil {
			return err
		}
		created, err := s.Create(ctx, screen.ProductDraft{
			Name:             *pf.name,
			Price:            *pf.price,
			RegistrationDate: *pf.date,
			CategoryIDs:      ids,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Product %d created: %s\n", created.ID, created.Name)
		return nil
	case "edit":
		if len(args) < 2 {
			return fmt.Errorf("usage: products edit <id> [flags]")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		pf := newProductFlags(c, "products edit")
		if err := pf.fs.Parse(args[2:]); err != nil {
			return err
		}
		if err := s.Load(ctx); err != nil {
			return err
		}
		current, ok := findProduct(s.Items(), id)
		if !ok {
			return fmt.Errorf("product %d not found", id)
		}

		var setErr error
		pf.fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				current.Name = *pf.name
			case "price":
				current.Price = *pf.price
			case "date":
				current.RegistrationDate = *pf.date
			case "categories":
				ids, err := parseIDList(*pf.categories)
				if err != nil {
					setErr = err
					return
				}
				current.Categories = s.SelectCategories(ids)
			}
		})
		if setErr != nil {
			return setErr
		}

		updated, err := s.Update(ctx, current)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Product %d updated: %s\n", updated.ID, updated.Name)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: products delete <id>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Product %d deleted\n", id)
		return nil
	default:
		return fmt.Errorf("unknown products action %q", args[0])
	}
}

func findProduct(items []model.Product, id int64) (model.Product, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func categoryNames(cats []model.Category) string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
