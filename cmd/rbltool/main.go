// SPDX-License-Identifier: MIT
// Copyright (c) 2020 Brian Starkey <stark3y@gmail.com>
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/usedbytes/log"
	"github.com/usedbytes/qboot-tools/lib/config"
	"github.com/usedbytes/qboot-tools/lib/rbl"
)

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if ctx.IsSet("config") {
		cfg, err = config.LoadConfig(ctx.String("config"))
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if ctx.IsSet("part") {
		cfg.PartName = ctx.String("part")
	}

	if ctx.IsSet("fw-version") {
		fwv, err := config.ParseFWVersion(ctx.String("fw-version"))
		if err != nil {
			return nil, errors.Wrap(err, "Parsing firmware version")
		}
		cfg.FWVersion = &fwv
	}

	if ctx.IsSet("product-code") {
		cfg.ProductCode = ctx.String("product-code")
	}

	if ctx.IsSet("compress") {
		algo, err := rbl.ParseCompressAlgo(ctx.String("compress"))
		if err != nil {
			return nil, err
		}
		cfg.Compress = &algo
	}

	if ctx.IsSet("crypt") {
		algo, err := rbl.ParseCryptAlgo(ctx.String("crypt"))
		if err != nil {
			return nil, err
		}
		cfg.Crypt = &algo
	}

	if ctx.IsSet("verify") {
		algo, err := rbl.ParseVerifyAlgo(ctx.String("verify"))
		if err != nil {
			return nil, err
		}
		cfg.Verify = &algo
	}

	log.Verboseln(cfg)

	return cfg, nil
}

func packTimestamp(ctx *cli.Context, bodyFile string) (uint32, error) {
	if ctx.IsSet("timestamp") {
		return uint32(ctx.Uint64("timestamp")), nil
	}

	fi, err := os.Stat(bodyFile)
	if err != nil {
		return 0, errors.Wrap(err, "Reading package body timestamp")
	}

	return uint32(fi.ModTime().Unix()), nil
}

func packAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 || ctx.Args().Len() > 3 {
		return fmt.Errorf("PATCH_FILE and NEW_FILE are required")
	}

	bodyFile := ctx.Args().Get(0)
	rawFile := ctx.Args().Get(1)

	outFile := rbl.DefaultOutputPath(bodyFile)
	if ctx.Args().Len() == 3 {
		outFile = ctx.Args().Get(2)
	}
	if ctx.IsSet("output") {
		outFile = ctx.String("output")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// Both inputs are read up-front, before the output file is
	// touched. A missing input must never leave a partial package
	// behind.
	rawData, err := ioutil.ReadFile(rawFile)
	if err != nil {
		return errors.Wrap(err, "Reading new firmware file")
	}
	log.Verbosef("Read new firmware '%s', %d bytes\n", rawFile, len(rawData))

	bodyData, err := ioutil.ReadFile(bodyFile)
	if err != nil {
		return errors.Wrap(err, "Reading package body file")
	}
	log.Verbosef("Read package body '%s', %d bytes\n", bodyFile, len(bodyData))

	timestamp, err := packTimestamp(ctx, bodyFile)
	if err != nil {
		return err
	}

	hdr, err := rbl.BuildHeader(rawData, bodyData, cfg.Algo(), cfg.Algo2(),
		timestamp, cfg.PartName, cfg.FWVersion.String(), cfg.ProductCode)
	if err != nil {
		return err
	}

	f, err := os.Create(outFile)
	if err != nil {
		return errors.Wrap(err, "Creating output file")
	}
	defer f.Close()

	_, err = f.Write(hdr)
	if err != nil {
		return errors.Wrap(err, "Writing header")
	}

	bar := pb.New(len(bodyData)).Set(pb.Bytes, true)
	bar.Start()
	_, err = io.Copy(f, bar.NewProxyReader(bytes.NewReader(bodyData)))
	bar.Finish()
	if err != nil {
		return errors.Wrap(err, "Writing package body")
	}

	err = f.Close()
	if err != nil {
		return errors.Wrap(err, "Closing output file")
	}

	log.Printf("Created RBL package '%s' (%d bytes)\n", outFile, len(hdr)+len(bodyData))

	return nil
}

func infoAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("PACKAGE_FILE is required")
	}

	hdr, body, err := rbl.ReadPackageFile(ctx.Args().First())
	if err != nil {
		return err
	}

	log.Println(hdr)

	raw, err := hdr.Marshal()
	if err == nil {
		log.Verbosef("Header:\n%s\n", hex.Dump(raw))
	}
	log.Verbosef("Body: %d bytes\n", len(body))

	return nil
}

var metadataFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "TOML file with package metadata",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "part",
		Usage:    "Target partition name",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "fw-version",
		Usage:    "Firmware version string, e.g. v1.00",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "product-code",
		Usage:    "Product identifier string",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "compress",
		Usage:    "Compression/patch algorithm: none, gzip, quicklz, fastlz, hpatchlite",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "crypt",
		Usage:    "Encryption algorithm: none, xor, aes256",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "verify",
		Usage:    "Verification algorithm: none, crc",
		Required: false,
	},
	&cli.Uint64Flag{
		Name:     "timestamp",
		Usage:    "Package timestamp (seconds since epoch, default: body file mtime)",
		Required: false,
	},
	&cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Output file (default: body file with " + rbl.PackageExt + " extension)",
		Required: false,
	},
}

func main() {
	app := &cli.App{
		Name:  "rbltool",
		Usage: "A tool for creating qboot RBL firmware update packages",
		// Just ignore errors - we'll handle them ourselves in main()
		ExitErrHandler: func(c *cli.Context, e error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:     "verbose",
				Aliases:  []string{"v"},
				Usage:    "Enable more output",
				Required: false,
				Value:    false,
			},
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "pack",
			Usage:     "Prepend an RBL header to a patch (or firmware) file",
			ArgsUsage: "PATCH_FILE NEW_FILE [OUTPUT_FILE]",
			Action:    packAction,
			Flags:     metadataFlags,
		},
		{
			Name:      "info",
			Usage:     "Show the header of an RBL package",
			ArgsUsage: "PACKAGE_FILE",
			Action:    infoAction,
		},
	}

	app.Before = func(ctx *cli.Context) error {
		log.SetUseLog(false)

		log.SetVerbose(ctx.Bool("verbose"))
		log.Verboseln("Extra output enabled.")
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Println("ERROR:", err)
		if v, ok := err.(cli.ExitCoder); ok {
			os.Exit(v.ExitCode())
		} else {
			os.Exit(1)
		}
	}
}
