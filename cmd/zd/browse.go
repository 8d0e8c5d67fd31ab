package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Short:   "Interactively page, filter and act on requests",
	GroupID: "views",
	Example: `  zd browse --limit 20`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := sinkFromFlags(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		ctrl, err := newController(cmd, sink)
		if err != nil {
			return err
		}
		defer ctrl.Close()
		return browse(cmd.Context(), ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

type browseOp int

const (
	opNone browseOp = iota
	opNext
	opPrev
	opPage
	opSearch
	opDepartment
	opSort
	opOrder
	opLimit
	opDelete
	opExport
	opReport
	opRefresh
	opHelp
	opQuit
)

type browseCommand struct {
	op    browseOp
	arg   string
	n     int
	field model.SortField
	order model.SortOrder
}

const browseHelp = `Commands:
  n, next              next page
  p, prev              previous page
  g, page N            go to page N
  s, search [TEXT]     search (empty clears)
  d, dept [NAME]       filter by department (empty clears)
  sort FIELD [ORDER]   sort by createdAt, appointment_date or full_name
  o, order [asc|desc]  set or toggle the sort order
  l, limit N           page size (5, 10, 20 or 50)
  del ID               delete a request
  x, export            export the filtered list as a spreadsheet
  pdf, report          save the current page as a PDF
  r, refresh           fetch the page again
  q, quit              leave`

// parseBrowseCommand parses one line of browse input.
func parseBrowseCommand(line string) (browseCommand, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return browseCommand{op: opNone}, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	number := func(op browseOp) (browseCommand, error) {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return browseCommand{}, fmt.Errorf("%s needs a number", word)
		}
		return browseCommand{op: op, n: n}, nil
	}

	switch strings.ToLower(word) {
	case "n", "next":
		return browseCommand{op: opNext}, nil
	case "p", "prev":
		return browseCommand{op: opPrev}, nil
	case "g", "page":
		return number(opPage)
	case "l", "limit":
		return number(opLimit)
	case "s", "search":
		return browseCommand{op: opSearch, arg: rest}, nil
	case "d", "dept", "department":
		return browseCommand{op: opDepartment, arg: rest}, nil
	case "sort":
		fieldArg, orderArg, _ := strings.Cut(rest, " ")
		field, ok := model.ParseSortField(fieldArg)
		if !ok {
			return browseCommand{}, fmt.Errorf("unknown sort field %q", fieldArg)
		}
		c := browseCommand{op: opSort, field: field}
		if orderArg = strings.TrimSpace(orderArg); orderArg != "" {
			c.order = model.SortOrder(strings.ToLower(orderArg))
			if !c.order.IsValid() {
				return browseCommand{}, fmt.Errorf("unknown sort order %q", orderArg)
			}
		}
		return c, nil
	case "o", "order":
		c := browseCommand{op: opOrder}
		if rest != "" {
			c.order = model.SortOrder(strings.ToLower(rest))
			if !c.order.IsValid() {
				return browseCommand{}, fmt.Errorf("unknown sort order %q", rest)
			}
		}
		return c, nil
	case "del", "delete", "rm":
		if rest == "" {
			return browseCommand{}, errors.New("del needs a request id")
		}
		return browseCommand{op: opDelete, arg: rest}, nil
	case "x", "export":
		return browseCommand{op: opExport}, nil
	case "pdf", "report":
		return browseCommand{op: opReport}, nil
	case "r", "refresh":
		return browseCommand{op: opRefresh}, nil
	case "?", "h", "help":
		return browseCommand{op: opHelp}, nil
	case "q", "quit", "exit":
		return browseCommand{op: opQuit}, nil
	}
	return browseCommand{}, fmt.Errorf("unknown command %q (? for help)", word)
}

// browse runs the interactive loop until quit or end of input.
func browse(ctx context.Context, ctrl *controller.Controller, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	if err := ctrl.Refresh(ctx); err != nil {
		fmt.Fprintln(out, ui.RenderFail("Error: "+err.Error()))
	}
	printPage(out, ctrl.View())

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, ui.RenderAccent("zd> "))
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return nil
		}
		c, perr := parseBrowseCommand(line)
		if perr != nil {
			fmt.Fprintln(out, ui.RenderWarn(perr.Error()))
			continue
		}
		quit, rerr := runBrowseCommand(ctx, ctrl, c, r, out)
		if quit {
			return nil
		}
		if rerr != nil {
			fmt.Fprintln(out, ui.RenderFail("Error: "+rerr.Error()))
		}
	}
}

// runBrowseCommand applies c. Fetch failures are returned for display; the
// controller keeps showing the previous page.
func runBrowseCommand(ctx context.Context, ctrl *controller.Controller, c browseCommand, in io.Reader, out io.Writer) (bool, error) {
	v := ctrl.View()
	var mutate func(*query.State) error

	switch c.op {
	case opNone:
		return false, nil
	case opQuit:
		return true, nil
	case opHelp:
		fmt.Fprintln(out, browseHelp)
		return false, nil
	case opNext:
		if !v.Nav.Next {
			fmt.Fprintln(out, ui.RenderMuted("Already on the last page."))
			return false, nil
		}
		next := v.Result.Meta.Page + 1
		mutate = func(s *query.State) error { return s.SetPage(next) }
	case opPrev:
		if !v.Nav.Prev {
			fmt.Fprintln(out, ui.RenderMuted("Already on the first page."))
			return false, nil
		}
		prev := v.Result.Meta.Page - 1
		mutate = func(s *query.State) error { return s.SetPage(prev) }
	case opPage:
		mutate = func(s *query.State) error { return s.SetPage(c.n) }
	case opLimit:
		mutate = func(s *query.State) error { return s.SetLimit(c.n) }
	case opSearch:
		mutate = func(s *query.State) error { s.SetSearch(c.arg); return nil }
	case opDepartment:
		mutate = func(s *query.State) error { s.SetDepartment(c.arg); return nil }
	case opSort:
		mutate = func(s *query.State) error {
			if err := s.SetSortField(c.field); err != nil {
				return err
			}
			if c.order != "" {
				return s.SetSortOrder(c.order)
			}
			return nil
		}
	case opOrder:
		mutate = func(s *query.State) error {
			order := c.order
			if order == "" {
				order = model.SortAsc
				if s.SortOrder() == model.SortAsc {
					order = model.SortDesc
				}
			}
			return s.SetSortOrder(order)
		}
	case opRefresh:
	case opDelete:
		ok, err := deleteOne(ctx, ctrl, c.arg, false, in, out)
		if err != nil {
			return false, err
		}
		if ok {
			fmt.Fprintf(out, "Deleted %s\n", c.arg)
			printPage(out, ctrl.View())
		}
		return false, nil
	case opExport:
		loc, err := ctrl.ExportCurrentView(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Exported to %s\n", loc)
		return false, nil
	case opReport:
		loc, err := deliverReport(ctx, ctrl)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Report written to %s\n", loc)
		return false, nil
	}

	if mutate != nil {
		probe := ctrl.Query()
		if err := mutate(&probe); err != nil {
			return false, err
		}
	}
	err := ctrl.Update(ctx, mutate)
	printPage(out, ctrl.View())
	return false, err
}

func init() {
	addQueryFlags(browseCmd)
	addSinkFlags(browseCmd)
}
