/*
Copyright (c) 2013-2018 The btcsuite developers
Copyright (c) 2015-2016 The Decred developers
Copyright (c) 2013-2014 Conformal Systems LLC.
Use of this source code is governed by an ISC
license that can be found in the LICENSE file.

Celld is a node core for a cell model proof of work chain written in Go. It
admits blocks and transactions into the chain and the transaction pool, builds
block templates for miners, and exposes these operations as RPC commands.

Usage:

	celld [OPTIONS]

For an up-to-date help message:

	celld --help

The long form of all option flags (except -C) can be specified in a configuration
file that is automatically parsed when celld starts up. By default, the
configuration file is located at ~/.celld/celld.conf on POSIX-style operating
systems and %LOCALAPPDATA%\Celld\celld.conf on Windows. The -C (--configfile)
flag can be used to override this location.
*/
package main
