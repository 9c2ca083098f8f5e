// Command presensi is a terminal client for the presensi API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"presensi-backend/internal/capture"
	"presensi-backend/internal/presensi"
)

type options struct {
	server string
	token  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, capture.UserMessage(err))
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "presensi",
		Short:         "Check-In / Check-Out dari terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("PRESENSI_SERVER", "http://localhost:3001"), "base URL server (PRESENSI_SERVER)")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PRESENSI_TOKEN"), "JWT dari login (PRESENSI_TOKEN)")

	root.AddCommand(
		newLoginCmd(opts),
		newCheckInCmd(opts),
		newCheckOutCmd(opts),
		newReportCmd(opts),
	)
	return root
}

func (o *options) client() *capture.Client {
	return capture.NewClient(o.server, capture.WithToken(o.token))
}

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login dan tampilkan token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := opts.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintln(cmd.ErrOrStderr(), "export PRESENSI_TOKEN=<token> untuk perintah berikutnya")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newCheckInCmd(opts *options) *cobra.Command {
	var (
		lat, lng  float64
		photoPath string
	)
	cmd := &cobra.Command{
		Use:   "check-in",
		Short: "Check-In dengan lokasi dan foto selfie",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f := capture.NewFlow(opts.client(), capture.StaticLocator{Lat: lat, Lng: lng}, capture.FileCamera{Path: photoPath})

			// 位置も写真も無ければ Flow 側の検証メッセージで止まる
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				if err := f.Locate(ctx); err != nil {
					return err
				}
			}
			if photoPath != "" {
				if err := f.Capture(ctx); err != nil {
					return err
				}
			}
			out, err := f.CheckIn(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Message)
			fmt.Fprintf(w, "Waktu   : %s\n", out.Time)
			fmt.Fprintf(w, "Lokasi  : %.6f, %.6f\n", out.Coords.Lat, out.Coords.Lng)
			fmt.Fprintf(w, "Foto    : %s\n", capture.PhotoURL(opts.server, out.Record.BuktiFoto))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().StringVar(&photoPath, "photo", "", "file foto selfie")
	return cmd
}

func newCheckOutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-out",
		Short: "Check-Out sesi yang masih terbuka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := capture.NewFlow(opts.client(), nil, nil)
			out, err := f.CheckOut(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "Waktu   : %s\n", out.Time)
			return nil
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	var q presensi.ReportQuery
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Tampilkan laporan presensi",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := opts.client().Report(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printReport(cmd, opts.server, rows)
		},
	}
	cmd.Flags().StringVar(&q.Nama, "nama", "", "filter nama (sebagian, tidak peka huruf besar)")
	cmd.Flags().StringVar(&q.TanggalMulai, "mulai", "", "tanggal mulai YYYY-MM-DD")
	cmd.Flags().StringVar(&q.TanggalSelesai, "selesai", "", "tanggal selesai YYYY-MM-DD")
	return cmd
}

func printReport(cmd *cobra.Command, server string, rows []presensi.PresensiResponse) error {
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Tidak ada data presensi.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAMA\tCHECK-IN\tCHECK-OUT\tLOKASI\tFOTO")
	for _, r := range rows {
		nama := "-"
		if r.User != nil && r.User.Nama != "" {
			nama = r.User.Nama
		}
		checkIn := r.CheckIn
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.5f, %.5f\t%s\n",
			nama,
			capture.FormatTime(&checkIn),
			capture.FormatTime(r.CheckOut),
			r.Latitude, r.Longitude,
			capture.PhotoURL(server, r.BuktiFoto),
		)
	}
	return tw.Flush()
}
