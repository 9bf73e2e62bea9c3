package bands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/collection"
	"github.com/roach88/bandwire/internal/command"
	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/wire"
)

// Register installs every band command into reg. Call once at startup, before Seal.
func Register(reg *command.Registry, m *collection.Manager) error {
	cmds := []command.Command{
		Add(m),
		AddIfMax(m),
		Clear(m),
		FilterContainsName(m),
		Help(reg),
		History(reg.History()),
		Info(m),
		PrintAscending(m),
		RemoveByID(m),
		RemoveLower(m),
		Show(m),
		SumOfAlbumsCount(m),
		Update(m),
	}
	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Add appends a new band.
func Add(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "add",
		CommandUsage: "add {element} : add a new band to the collection",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			b, err := bandOnly("add", args)
			if err != nil {
				return command.FromError(err)
			}
			stored, err := m.Add(b)
			if err != nil {
				return command.FromError(err)
			}
			return codec.Success(fmt.Sprintf("band %q added with id %d", stored.Name, stored.ID), wire.NewBand(stored))
		},
	}
}

// AddIfMax adds a band only if it exceeds the current greatest band.
func AddIfMax(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "add_if_max",
		CommandUsage: "add_if_max {element} : add a new band if it is greater than the greatest band in the collection",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			b, err := bandOnly("add_if_max", args)
			if err != nil {
				return command.FromError(err)
			}
			stored, added, err := m.AddIfMax(b)
			if err != nil {
				return command.FromError(err)
			}
			if !added {
				return codec.Success("band does not exceed the greatest band in the collection; not added")
			}
			return codec.Success(fmt.Sprintf("band %q is the new greatest band, added with id %d", stored.Name, stored.ID), wire.NewBand(stored))
		},
	}
}

// Update replaces the fields of the band with the given id.
func Update(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "update",
		CommandUsage: "update id {element} : update the band whose id equals the given one",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("update", args, 2); err != nil {
				return command.FromError(err)
			}
			id, err := command.IntArg("update", args, 0)
			if err != nil {
				return command.FromError(err)
			}
			b, err := command.BandArg("update", args, 1)
			if err != nil {
				return command.FromError(err)
			}
			updated, err := m.Update(id, b)
			if err != nil {
				return command.FromError(err)
			}
			return codec.Success(fmt.Sprintf("band %d updated", updated.ID), wire.NewBand(updated))
		},
	}
}

// RemoveByID deletes the band with the given id.
func RemoveByID(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "remove_by_id",
		CommandUsage: "remove_by_id id : remove the band with the given id",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("remove_by_id", args, 1); err != nil {
				return command.FromError(err)
			}
			id, err := command.IntArg("remove_by_id", args, 0)
			if err != nil {
				return command.FromError(err)
			}
			removed, err := m.RemoveByID(id)
			if err != nil {
				return command.FromError(err)
			}
			return codec.Success(fmt.Sprintf("band %d (%s) removed", removed.ID, removed.Name))
		},
	}
}

// RemoveLower deletes every band lower than the given one.
func RemoveLower(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "remove_lower",
		CommandUsage: "remove_lower {element} : remove every band lower than the given one",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			b, err := bandOnly("remove_lower", args)
			if err != nil {
				return command.FromError(err)
			}
			removed, err := m.RemoveLower(b)
			if err != nil {
				return command.FromError(err)
			}
			return codec.Success(fmt.Sprintf("%d band(s) removed", len(removed)), wire.NewBands(removed))
		},
	}
}

// Clear empties the collection.
func Clear(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "clear",
		CommandUsage: "clear : remove every band",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("clear", args, 0); err != nil {
				return command.FromError(err)
			}
			n := m.Clear()
			return codec.Success(fmt.Sprintf("collection cleared, %d band(s) removed", n))
		},
	}
}

// Show returns every band in insertion order.
func Show(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "show",
		CommandUsage: "show : print every band of the collection",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("show", args, 0); err != nil {
				return command.FromError(err)
			}
			all := m.All()
			if len(all) == 0 {
				return codec.Success("collection is empty", wire.NewBands(nil))
			}
			return codec.Success(fmt.Sprintf("%d band(s)", len(all)), wire.NewBands(all))
		},
	}
}

// PrintAscending returns every band in ascending order.
func PrintAscending(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "print_ascending",
		CommandUsage: "print_ascending : print the bands in ascending order",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("print_ascending", args, 0); err != nil {
				return command.FromError(err)
			}
			sorted := m.Ascending()
			return codec.Success(fmt.Sprintf("%d band(s) in ascending order", len(sorted)), wire.NewBands(sorted))
		},
	}
}

// FilterContainsName returns bands whose name contains a substring.
func FilterContainsName(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "filter_contains_name",
		CommandUsage: "filter_contains_name name : print bands whose name contains the given substring",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("filter_contains_name", args, 1); err != nil {
				return command.FromError(err)
			}
			substr, err := command.StringArg("filter_contains_name", args, 0)
			if err != nil {
				return command.FromError(err)
			}
			matches := m.FilterContainsName(substr)
			return codec.Success(fmt.Sprintf("%d band(s) match %q", len(matches), substr), wire.NewBands(matches))
		},
	}
}

// SumOfAlbumsCount adds up the albums count of every band.
func SumOfAlbumsCount(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "sum_of_albums_count",
		CommandUsage: "sum_of_albums_count : print the sum of albums_count over every band",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("sum_of_albums_count", args, 0); err != nil {
				return command.FromError(err)
			}
			sum := m.SumAlbumsCount()
			return codec.Success(fmt.Sprintf("sum of albums count: %d", sum), wire.Int(sum))
		},
	}
}

// Info describes the collection.
func Info(m *collection.Manager) command.Command {
	return command.Func{
		CommandName:  "info",
		CommandUsage: "info : print information about the collection",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("info", args, 0); err != nil {
				return command.FromError(err)
			}
			info := m.Info()
			msg := fmt.Sprintf("type: %s, initialised: %s, size: %d",
				info.Type, info.InitTime.Format(time.RFC3339), info.Size)
			return codec.Success(msg, wire.Int(info.Size), wire.Int(info.LastID))
		},
	}
}

// Help lists the usage of every registered command.
func Help(reg *command.Registry) command.Command {
	return command.Func{
		CommandName:  "help",
		CommandUsage: "help : print usage of every command",
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("help", args, 0); err != nil {
				return command.FromError(err)
			}
			cmds := reg.Commands()
			lines := make([]string, len(cmds))
			for i, c := range cmds {
				lines[i] = c.Usage()
			}
			return codec.Success(strings.Join(lines, "\n"))
		},
	}
}

// History lists the most recently dispatched command names.
func History(h *command.History) command.Command {
	return command.Func{
		CommandName:  "history",
		CommandUsage: fmt.Sprintf("history : print the last %d commands", command.DefaultHistorySize),
		Run: func(_ context.Context, args []wire.Value) codec.Response {
			if err := command.CheckArity("history", args, 0); err != nil {
				return command.FromError(err)
			}
			names := h.Names()
			payload := make([]wire.Value, len(names))
			for i, n := range names {
				payload[i] = wire.String(n)
			}
			return codec.Success(strings.Join(names, "\n"), payload...)
		},
	}
}

func bandOnly(name string, args []wire.Value) (model.Band, error) {
	if err := command.CheckArity(name, args, 1); err != nil {
		return model.Band{}, err
	}
	return command.BandArg(name, args, 0)
}
