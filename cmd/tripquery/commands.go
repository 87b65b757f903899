package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dharmasatrya/tripquery/internal/app"
	"github.com/dharmasatrya/tripquery/internal/config"
	"github.com/dharmasatrya/tripquery/internal/logging"
	"github.com/dharmasatrya/tripquery/internal/models"
)

func newApp(out io.Writer) *cli.App {
	var application *app.App

	return &cli.App{
		Name:      "tripquery",
		Usage:     "Turn trip descriptions into booking links",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "airports",
				Usage:   "JSON file merged over the built-in airport table",
				EnvVars: []string{"AIRPORTS_FILE"},
			},
			&cli.StringFlag{
				Name:  "now",
				Usage: "Reference date (YYYY-MM-DD) used as today",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.CacheEnabled = false
			if path := c.String("airports"); path != "" {
				cfg.AirportsFile = path
			}
			if err := logging.Setup(os.Stderr, c.String("log-level"), "console"); err != nil {
				return err
			}

			var opts []app.Option
			if now := c.String("now"); now != "" {
				day, err := time.ParseInLocation(models.DateLayout, now, cfg.Location())
				if err != nil {
					return fmt.Errorf("--now must be YYYY-MM-DD: %w", err)
				}
				opts = append(opts, app.WithClock(func() time.Time { return day.Add(12 * time.Hour) }))
			}

			application, err = app.New(c.Context, cfg, opts...)
			return err
		},
		After: func(c *cli.Context) error {
			if application != nil {
				application.Close(c.Context)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "interpret",
				Usage:     "Interpret a free-text trip description",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					query := strings.Join(c.Args().Slice(), " ")
					resp, err := application.Service.SearchByQuery(c.Context, query)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, resp)
				},
			},
			linkCommand(&application),
			{
				Name:      "airport",
				Usage:     "Resolve a city, airport name or code to an IATA code",
				ArgsUsage: "<name or code>",
				Action: func(c *cli.Context) error {
					phrase := strings.Join(c.Args().Slice(), " ")
					code, err := application.Airports.Resolve(phrase)
					if err != nil {
						return err
					}
					if a, ok := application.Airports.Lookup(code); ok {
						fmt.Fprintf(c.App.Writer, "%s\t%s, %s\n", code, a.Name, a.City)
						return nil
					}
					fmt.Fprintln(c.App.Writer, code)
					return nil
				},
			},
		},
	}
}

func linkCommand(application **app.App) *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Build a booking link from explicit fields",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Departure airport or city", Required: true},
			&cli.StringFlag{Name: "to", Usage: "Arrival airport or city", Required: true},
			&cli.StringFlag{Name: "depart", Usage: "Departure date (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "return", Usage: "Return date (YYYY-MM-DD)", Required: true},
			&cli.IntFlag{Name: "adults", Value: 1},
			&cli.IntFlag{Name: "seniors"},
			&cli.IntFlag{Name: "students"},
			&cli.IntSliceFlag{Name: "child-age", Usage: "Age of one child, repeat per child"},
			&cli.IntFlag{Name: "infants-seat"},
			&cli.IntFlag{Name: "infants-lap"},
		},
		Action: func(c *cli.Context) error {
			resp, err := (*application).Service.SearchStructured(c.Context, models.FlightParams{
				LeavingAirport:     c.String("from"),
				DestinationAirport: c.String("to"),
				DepartureDate:      c.String("depart"),
				ReturnDate:         c.String("return"),
				NumAdults:          c.Int("adults"),
				NumSeniors:         c.Int("seniors"),
				NumStudents:        c.Int("students"),
				ChildrenAges:       c.IntSlice("child-age"),
				InfantsOnSeat:      c.Int("infants-seat"),
				InfantsOnLap:       c.Int("infants-lap"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, resp.BookingURL)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
