package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eegrx/eegrx/dsp"
	"github.com/eegrx/eegrx/eeg"
	"github.com/eegrx/eegrx/eegrx"
	"github.com/eegrx/eegrx/spectral"
)

var rootCmd = &cobra.Command{
	Use:   "eegrx",
	Short: "A two-channel EEG drowsiness monitor.",
}

var (
	configPath string
	leftDev    string
	rightDev   string
	baud       int
	rawEvents  bool
)

func init() {
	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run a live session and print events",
		Run:   func(cmd *cobra.Command, args []string) { monitor() },
	}
	monitorCmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON config file")
	monitorCmd.Flags().StringVar(&leftDev, "left", "", "left channel device (tty path, host:port, or capture file)")
	monitorCmd.Flags().StringVar(&rightDev, "right", "", "right channel device")
	monitorCmd.Flags().IntVarP(&baud, "baud", "b", 57600, "serial baud rate")
	monitorCmd.Flags().BoolVar(&rawEvents, "raw", false, "print every raw sample")
	rootCmd.AddCommand(monitorCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode capturefile",
		Short: "Decode a raw byte capture into calibrated samples",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { decode(args[0]) },
	}
	rootCmd.AddCommand(decodeCmd)

	spectrumCmd := &cobra.Command{
		Use:   "spectrum capturefile",
		Short: "Decode, filter and print the magnitude spectrum",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { spectrum(args[0]) },
	}
	spectrumCmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON config file")
	rootCmd.AddCommand(spectrumCmd)
}

func loadConfig() eegrx.Config {
	if configPath == "" {
		return eegrx.DefaultConfig()
	}
	cfg, err := eegrx.LoadConfig(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	return cfg
}

// openSource builds a channel source from a device string: a serial tty, a
// TCP address, or a recorded capture file.
func openSource(ch eeg.Channel, dev string) (eeg.Source, error) {
	switch {
	case dev == "":
		return nil, fmt.Errorf("no %s device given", ch)
	case dev == "-":
		return eeg.NewReaderSource(ch, os.Stdin), nil
	}
	if fi, err := os.Stat(dev); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			return eeg.NewSerialSource(ch, dev, baud), nil
		}
		f, err := os.Open(dev)
		if err != nil {
			return nil, err
		}
		return eeg.NewReaderSource(ch, f), nil
	}
	return eeg.NewTCPSource(ch, dev), nil
}

func monitor() {
	cfg := loadConfig()
	var srcs eeg.MergeSources
	for ch, dev := range map[eeg.Channel]string{eeg.Left: leftDev, eeg.Right: rightDev} {
		if dev == "" {
			continue
		}
		s, err := openSource(ch, dev)
		if err != nil {
			logrus.WithError(err).Fatal("open source")
		}
		srcs = append(srcs, s)
	}
	if len(srcs) == 0 {
		logrus.Fatal("need at least one of --left/--right")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	sink := eegrx.NewChanSink(1024)
	sess := eegrx.NewSession(srcs, sink, cfg)
	go func() {
		for ev := range sink.C {
			printEvent(ev)
		}
	}()
	if err := sess.Run(ctx); err != nil && err != context.Canceled {
		logrus.WithError(err).Error("session ended")
		os.Exit(1)
	}
}

func printEvent(ev eegrx.Event) {
	switch e := ev.(type) {
	case eegrx.RawSample:
		if rawEvents {
			fmt.Printf("%s %s %.4f uV q=%d\n",
				e.Sample.Time.Format("15:04:05.000"), e.Channel, e.Microvolts, e.Quality)
		}
	case eegrx.RateUpdate:
		fmt.Printf("%s rate %.2f Hz, poor %.1f%%\n", e.Channel, e.RateHz, e.QualityPct)
	case eegrx.CognitiveUpdate:
		fmt.Printf("%s meditation %d attention %d\n", e.Channel, e.Meditation, e.Attention)
	case eegrx.Classification:
		fmt.Printf("%s %s  D/A=%.2f T/A=%.2f T/B=%.2f A/B=%.2f\n",
			e.Channel, e.State, e.Ratios.DA, e.Ratios.TA, e.Ratios.TB, e.Ratios.AB)
	case eegrx.LogLine:
		logrus.Info(e.Text)
	case eegrx.SessionTerminated:
		if e.Err != nil {
			logrus.WithError(e.Err).Warnf("session terminated: %s", e.Reason)
		} else {
			logrus.Infof("session terminated: %s", e.Reason)
		}
	}
}

// decodeFile runs a capture through the decoder and converter, returning the
// calibrated samples in order.
func decodeFile(path string) ([]eeg.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dec eeg.Decoder
	var samples []eeg.Sample
	now := time.Now()
	for _, f := range dec.Append(data) {
		if f.Kind != eeg.KindShortAffect {
			continue
		}
		s, err := eeg.ConvertShort(eeg.Left, f, now)
		if err != nil {
			continue
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func decode(path string) {
	samples, err := decodeFile(path)
	if err != nil {
		logrus.WithError(err).Fatal("decode")
	}
	for _, s := range samples {
		fmt.Printf("%.6f %d\n", s.Microvolts, s.Quality)
	}
}

func spectrum(path string) {
	cfg := loadConfig()
	samples, err := decodeFile(path)
	if err != nil {
		logrus.WithError(err).Fatal("decode")
	}
	seg := make([]float64, len(samples))
	for i, s := range samples {
		seg[i] = s.Microvolts
	}
	chain := dsp.NewChain(cfg.Filter)
	seg = chain.Apply(seg)
	freqs, mags := spectral.Spectrum(seg, chain.Rate())
	for i := range freqs {
		fmt.Printf("%.3f %.6f\n", freqs[i], mags[i])
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
