package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frankli0324/go-wsdial"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tls := "none"
			if wsdial.TLSAvailable() {
				tls = strings.Join(wsdial.TLSEngines(), ", ")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wsdial %s (%s, %s/%s)\nTLS engines: %s\n",
				version, runtime.Version(), runtime.GOOS, runtime.GOARCH, tls)
		},
	}
}

func newEnginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the TLS engines compiled into this binary, preferred first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !wsdial.TLSAvailable() {
				fmt.Fprintln(cmd.OutOrStdout(), "no TLS engine, built with -tags no_tls")
				return
			}
			for _, name := range wsdial.TLSEngines() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
