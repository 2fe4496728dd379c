// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command sqltypes inspects the type engine:
// it dumps the catalog, resolves operators,
// evaluates casts and encodes index keys.
package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/SnellerInc/sqltypes/keycodec"
	"github.com/SnellerInc/sqltypes/registry"
	"github.com/SnellerInc/sqltypes/types"

	"github.com/klauspost/compress/zstd"
)

var (
	dashv bool
	dashh bool
	dashz bool
	dashc string
	dasho string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.BoolVar(&dashz, "z", false, "compress output with zstd")
	flag.StringVar(&dashc, "c", "", "configuration file (.json or .yaml)")
	flag.StringVar(&dasho, "o", "-", "output file (or - for stdout)")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func load() *registry.Registry {
	var cfg *registry.Config
	if dashc != "" {
		var err error
		cfg, err = registry.OpenConfig(os.DirFS("."), dashc)
		if err != nil {
			exitf("%s", err)
		}
	}
	var opts []registry.Option
	if dashv {
		opts = append(opts, registry.WithLogger(log.New(os.Stderr, "", log.Lmicroseconds)))
	}
	r, err := registry.New(cfg, opts...)
	if err != nil {
		exitf("%s", err)
	}
	return r
}

// output is the destination of a command;
// Close flushes and closes every layer.
type output struct {
	*bufio.Writer
	zw *zstd.Encoder
	f  *os.File
}

func create() *output {
	o := &output{f: os.Stdout}
	if dasho != "-" {
		f, err := os.Create(dasho)
		if err != nil {
			exitf("creating output: %s", err)
		}
		o.f = f
	}
	var w io.Writer = o.f
	if dashz {
		zw, err := zstd.NewWriter(o.f, zstd.WithEncoderConcurrency(1))
		if err != nil {
			exitf("zstd: %s", err)
		}
		o.zw = zw
		w = zw
	}
	o.Writer = bufio.NewWriter(w)
	return o
}

func (o *output) Close() {
	if err := o.Flush(); err != nil {
		exitf("writing output: %s", err)
	}
	if o.zw != nil {
		if err := o.zw.Close(); err != nil {
			exitf("writing output: %s", err)
		}
	}
	if o.f != os.Stdout {
		if err := o.f.Close(); err != nil {
			exitf("closing output: %s", err)
		}
	}
}

func dump[T any](list []T) {
	o := create()
	defer o.Close()
	enc := json.NewEncoder(o)
	for i := range list {
		if err := enc.Encode(&list[i]); err != nil {
			exitf("encoding: %s", err)
		}
	}
}

func resolve(r *registry.Registry, name string, specs []string) {
	args := make([]*types.Instance, len(specs))
	for i := range specs {
		in, err := parseType(r, specs[i])
		if err != nil {
			exitf("%s", err)
		}
		args[i] = in
	}
	res, err := r.Resolver().Resolve(name, args)
	if err != nil {
		exitf("%s", err)
	}
	o := create()
	defer o.Close()
	fmt.Fprintf(o, "%s\n", res.Overload)
	for i := range args {
		c := "none"
		if res.Casts[i] != nil {
			c = fmt.Sprintf("%T", res.Casts[i])
			if s, ok := res.Casts[i].(fmt.Stringer); ok {
				c = s.String()
			}
		}
		fmt.Fprintf(o, "  arg %d: %s -> %s (cast: %s)\n", i, instanceString(args[i]), instanceString(res.Inputs[i]), c)
	}
	fmt.Fprintf(o, "  result: %s (cost %d)\n", instanceString(res.Output), res.Cost)
}

func instanceString(in *types.Instance) string {
	if in == nil {
		return "NULL"
	}
	return in.String()
}

func convert(r *registry.Registry, from, to, text string) {
	src, err := parseType(r, from)
	if err != nil {
		exitf("%s", err)
	}
	dst, err := parseType(r, to)
	if err != nil {
		exitf("%s", err)
	}
	if src == nil || dst == nil {
		exitf("cast: both types must be named")
	}
	c, err := r.Casts().Caster(src.Family(), dst.Family())
	if err != nil {
		exitf("%s", err)
	}
	v := src.NewValue()
	if !strings.EqualFold(text, "null") {
		if err := src.Family().Parse(src, text, v); err != nil {
			exitf("%s", err)
		}
	}
	ctx := types.NewPrepContext([]*types.Instance{src}, dst, 0).NewExecContext(types.NotifierFunc(func(w types.Warning) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}))
	out := dst.NewValue()
	c.Evaluate(ctx, v, out)

	o := create()
	defer o.Close()
	fmt.Fprintf(o, "%s\n", dst.Family().FormatLiteral(dst, out, nil))
}

func encode(r *registry.Registry, args []string) {
	cols := make([]keycodec.Column, len(args))
	vals := make([]*types.Value, len(args))
	for i := range args {
		c, err := parseColumn(r, args[i])
		if err != nil {
			exitf("%s", err)
		}
		cols[i] = keycodec.Column{Instance: c.in, Descending: c.desc}
		vals[i] = c.val
	}
	codec := r.Codec()
	var key keycodec.Key
	for i := range cols {
		if err := codec.Encode(&key, cols[i], vals[i], args[i]); err != nil {
			exitf("%s", err)
		}
	}
	o := create()
	defer o.Close()
	fmt.Fprintf(o, "%s\n", hex.EncodeToString(key.Bytes()))
	if !dashv {
		return
	}
	d := codec.NewDecoder(cols)
	d.Attach(key.Bytes())
	for i := range cols {
		src, err := d.Column(i)
		if err != nil {
			exitf("decoding column %d: %s", i, err)
		}
		in := cols[i].Instance
		fmt.Fprintf(o, "  %d: %s %x = %s\n", i, in, src.Segment(), in.Family().FormatLiteral(in, src, nil))
	}
	d.Detach()
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s [-c <config>] [-o <output>] [-z] types|casts|overloads\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        dump the catalog as JSON lines\n")
	fmt.Fprintf(os.Stderr, "    %s [-c <config>] fingerprint\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print the catalog fingerprint\n")
	fmt.Fprintf(os.Stderr, "    %s [-c <config>] resolve <name> <type>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        resolve an operator call\n")
	fmt.Fprintf(os.Stderr, "    %s [-c <config>] cast <from> <to> <value>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        convert a value between types\n")
	fmt.Fprintf(os.Stderr, "    %s [-c <config>] [-v] encode [desc:]<type>=<value>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        encode an index key\n")
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || dashh {
		usage()
	}
	r := load()
	switch args[0] {
	case "types":
		dump(r.TypeInfos())
	case "casts":
		dump(r.CastInfos())
	case "overloads":
		dump(r.OverloadInfos())
	case "fingerprint":
		o := create()
		fmt.Fprintf(o, "%s\n", r.Fingerprint())
		o.Close()
	case "resolve":
		if len(args) < 2 {
			exitf("usage: resolve <name> <type>...")
		}
		resolve(r, args[1], args[2:])
	case "cast":
		if len(args) != 4 {
			exitf("usage: cast <from> <to> <value>")
		}
		convert(r, args[1], args[2], args[3])
	case "encode":
		if len(args) < 2 {
			exitf("usage: encode [desc:]<type>=<value>...")
		}
		encode(r, args[1:])
	default:
		exitf("unknown command %q", args[0])
	}
}
