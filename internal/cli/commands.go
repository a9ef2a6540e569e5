package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	h3mapper "github.com/mohammed-shakir/fdsnws-client/internal/mapper/h3"
	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

var errNoNetwork = errors.New("network not found")

func versionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the station service version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := g.client(cmd).Station.Version(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
}

func networkCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "network <code>",
		Short: "Fetch a network and its stations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nets, err := g.client(cmd).Station.QueryNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if nets == nil {
				return fmt.Errorf("%s: %w", args[0], errNoNetwork)
			}
			return g.print(cmd.OutOrStdout(), nets)
		},
	}
}

type stationFlags struct {
	network, station, location, channel string
	startAfter, startBefore             string
	endAfter, endBefore                 string
	lat, lon, maxRadius                 float64
	minLat, maxLat, minLon, maxLon      float64
	level                               string
	excludeRestricted                   bool
	h3res                               int
}

func stationsCmd(g *globals) *cobra.Command {
	var f stationFlags

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Search stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := g.client(cmd).Station.Query()
			f.apply(cmd, b)

			stations, err := b.Finish(cmd.Context())
			if err != nil {
				return err
			}
			if stations == nil {
				stations = []fdsnws.Station{}
			}
			if !cmd.Flags().Changed("h3res") {
				return g.print(cmd.OutOrStdout(), stations)
			}
			cells, err := h3mapper.GroupByCell(stations, f.h3res)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), cells)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.network, "network", "", "network code(s), wildcards allowed")
	fl.StringVar(&f.station, "station", "", "station code(s)")
	fl.StringVar(&f.location, "location", "", "location code(s)")
	fl.StringVar(&f.channel, "channel", "", "channel code(s)")
	fl.StringVar(&f.startAfter, "start-after", "", "station starts after this date")
	fl.StringVar(&f.startBefore, "start-before", "", "station starts before this date")
	fl.StringVar(&f.endAfter, "end-after", "", "station ends after this date")
	fl.StringVar(&f.endBefore, "end-before", "", "station ends before this date")
	fl.Float64Var(&f.lat, "lat", 0, "circle center latitude")
	fl.Float64Var(&f.lon, "lon", 0, "circle center longitude")
	fl.Float64Var(&f.maxRadius, "max-radius", 0, "circle radius in degrees")
	fl.Float64Var(&f.minLat, "min-lat", 0, "box south edge")
	fl.Float64Var(&f.maxLat, "max-lat", 0, "box north edge")
	fl.Float64Var(&f.minLon, "min-lon", 0, "box west edge")
	fl.Float64Var(&f.maxLon, "max-lon", 0, "box east edge")
	fl.StringVar(&f.level, "level", "", "network, station, channel or response")
	fl.BoolVar(&f.excludeRestricted, "exclude-restricted", false, "drop restricted channels")
	fl.IntVar(&f.h3res, "h3res", 5, "group stations by H3 cell at this resolution")
	return cmd
}

// apply copies the flags the user set onto the builder. Unset flags are left
// out of the query entirely.
func (f *stationFlags) apply(cmd *cobra.Command, b *fdsnws.QueryBuilder[[]fdsnws.Station]) {
	set := cmd.Flags().Changed
	for _, s := range []struct {
		flag string
		fn   func(string) *fdsnws.QueryBuilder[[]fdsnws.Station]
		v    string
	}{
		{"network", b.Channel().Network, f.network},
		{"station", b.Channel().Station, f.station},
		{"location", b.Channel().Location, f.location},
		{"channel", b.Channel().Code, f.channel},
		{"level", b.Station().Level, f.level},
	} {
		if set(s.flag) {
			s.fn(s.v)
		}
	}
	for _, s := range []struct {
		flag string
		fn   func(any) *fdsnws.QueryBuilder[[]fdsnws.Station]
		v    any
	}{
		{"lat", b.Circle().Latitude, f.lat},
		{"lon", b.Circle().Longitude, f.lon},
		{"max-radius", b.Circle().MaxRadius, f.maxRadius},
		{"min-lat", b.Box().MinLatitude, f.minLat},
		{"max-lat", b.Box().MaxLatitude, f.maxLat},
		{"min-lon", b.Box().MinLongitude, f.minLon},
		{"max-lon", b.Box().MaxLongitude, f.maxLon},
		{"start-after", b.Time().StartAfter, f.startAfter},
		{"start-before", b.Time().StartBefore, f.startBefore},
		{"end-after", b.Time().EndAfter, f.endAfter},
		{"end-before", b.Time().EndBefore, f.endBefore},
	} {
		if set(s.flag) {
			s.fn(s.v)
		}
	}
	if f.excludeRestricted {
		b.Station().ExcludeRestrictedChannels()
	}
}
