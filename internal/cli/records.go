package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dell121212/laberaer/internal/core"
	"github.com/dell121212/laberaer/pkg/domain"
)

func strainsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strains",
		Short: "Inspect preserved strains",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "due",
		Short: "List strains whose transfer is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := s.App().Service
			due := core.StrainsDueForTransfer(svc.Strains.List(), svc.Now())
			if len(due) == 0 {
				fprintf(cmd.OutOrStdout(), "no transfers due\n")
				return nil
			}
			w := table(cmd.OutOrStdout())
			fprintf(w, "NAME\tLOCATION\tDUE\tEVERY\n")
			for _, st := range due {
				r := st.TransferReminder
				fprintf(w, "%s\t%s\t%s\t%dd\n", st.Name, st.Location, warnMark(string(domain.DateOf(r.NextDue()))), r.IntervalDays)
			}
			return w.Flush()
		},
	})
	return cmd
}

func findCmd(s *session) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "find <strain|member|medium|thesis> [query]",
		Short: "Search records by name and related fields",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			var query string
			if len(args) == 2 {
				query = args[1]
			}
			svc := s.App().Service
			out := cmd.OutOrStdout()
			switch entity {
			case domain.EntityStrain:
				return printMatches(out, core.SearchStrains(svc.Strains.List(), query, kind))
			case domain.EntityMember:
				return printMatches(out, core.SearchMembers(svc.Members.List(), query))
			case domain.EntityMedium:
				return printMatches(out, core.SearchMedia(svc.Media.List(), svc.Strains.List(), query))
			case domain.EntityThesis:
				return printMatches(out, core.SearchTheses(svc.Theses.List(), query))
			default:
				return fmt.Errorf("find does not support %s", entity)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only strains of this type")
	return cmd
}

func printMatches[T domain.Record[T]](out io.Writer, items []T) error {
	if len(items) == 0 {
		fprintf(out, "no matches\n")
		return nil
	}
	w := table(out)
	fprintf(w, "ID\tNAME\tCREATED\n")
	for _, item := range items {
		fprintf(w, "%s\t%s\t%s\n", dimMark(item.Key()), item.Label(), timestamp(item.Created()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fprintf(out, "%d matches\n", len(items))
	return nil
}

func auditCmd(s *session) *cobra.Command {
	var module, verb, actor string
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entity domain.EntityType
			if module != "" {
				parsed, err := domain.ParseEntityType(module)
				if err != nil {
					entity = domain.EntityType(module)
				} else {
					entity = parsed
				}
			}
			entries := s.App().Service.Audit.Query(core.AuditQuery{Module: entity, Verb: domain.Verb(verb), Actor: actor})
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			w := table(cmd.OutOrStdout())
			fprintf(w, "TIME\tACTOR\tVERB\tMODULE\tDETAIL\n")
			for _, e := range entries {
				fprintf(w, "%s\t%s\t%s\t%s\t%s\n", timestamp(e.Timestamp), e.ActorName, e.Verb.Label(), e.Module, e.Detail)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "Only entries of this module (strain, member, duty, medium, thesis, user)")
	cmd.Flags().StringVar(&verb, "verb", "", "Only entries with this verb (add, edit, delete, import, export, download)")
	cmd.Flags().StringVar(&actor, "actor", "", "Only entries by this user id or name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show; 0 shows all")
	return cmd
}

func actorsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actors",
		Short: "Manage registered users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := table(cmd.OutOrStdout())
			fprintf(w, "ID\tNAME\tROLE\tBLOCKED\n")
			for _, a := range s.App().Service.Actors.List() {
				blocked := strconv.FormatBool(a.Blocked)
				if a.Blocked {
					blocked = errMark(blocked)
				}
				fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.DisplayName, a.Role, blocked)
			}
			return w.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "register <name>",
		Short: "Register a member user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App().Service.Actors.Register(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", okMark("registered"), a.DisplayName, a.ID)
			return nil
		},
	})
	type change struct {
		use, short string
		apply      func(*cobra.Command, *core.Directory, string) (domain.Actor, error)
	}
	changes := []change{
		{"promote", "Grant the admin role", func(c *cobra.Command, d *core.Directory, id string) (domain.Actor, error) {
			return d.SetRole(c.Context(), id, domain.RoleAdmin)
		}},
		{"demote", "Revoke the admin role", func(c *cobra.Command, d *core.Directory, id string) (domain.Actor, error) {
			return d.SetRole(c.Context(), id, domain.RoleMember)
		}},
		{"block", "Block a user from every change", func(c *cobra.Command, d *core.Directory, id string) (domain.Actor, error) {
			return d.SetBlocked(c.Context(), id, true)
		}},
		{"unblock", "Lift a block", func(c *cobra.Command, d *core.Directory, id string) (domain.Actor, error) {
			return d.SetBlocked(c.Context(), id, false)
		}},
	}
	for _, ch := range changes {
		cmd.AddCommand(&cobra.Command{
			Use:   ch.use + " <id|name>",
			Short: ch.short + " (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := s.App().Service.Actors
				id, err := actorID(dir, args[0])
				if err != nil {
					return err
				}
				a, err := ch.apply(cmd, dir, id)
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "%s role=%s blocked=%t\n", a.DisplayName, a.Role, a.Blocked)
				return nil
			},
		})
	}
	return cmd
}

func actorID(dir *core.Directory, ref string) (string, error) {
	if a, ok := dir.Get(ref); ok {
		return a.ID, nil
	}
	if a, ok := dir.FindByName(ref); ok {
		return a.ID, nil
	}
	return "", fmt.Errorf("user %q: %w", ref, domain.ErrNotFound)
}
