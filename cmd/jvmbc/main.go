// jvmbc - JVM 字节码工具
//
// 用法:
//   jvmbc disasm [options] Foo.class       # 反汇编 class 文件中的方法
//   jvmbc disasm -hex 0607 60ac            # 反汇编十六进制字节码
//   jvmbc roundtrip code.bin               # 解码后重新编码并比较
//   jvmbc emit -o Hello.class              # 生成示例类
//   jvmbc init                             # 生成默认配置文件

package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/tangzhangming/jvmbc/internal/bytecode"
	"github.com/tangzhangming/jvmbc/internal/config"
	"github.com/tangzhangming/jvmbc/internal/constpool"
	"github.com/tangzhangming/jvmbc/internal/jvmgen"
	"github.com/tangzhangming/jvmbc/internal/logging"
)

// 版本信息
const (
	Version = "0.1.0"
	Name    = "jvmbc"
)

// options 命令行选项
type options struct {
	configPath string
	format     string
	output     string
	hexInput   bool
	noOffsets  bool
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// run 解析参数并执行子命令
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr, nil)
		return fmt.Errorf("请指定命令")
	}
	cmd, cmdArgs := args[0], args[1:]

	var opts options
	fs := flag.NewFlagSet(Name+" "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "配置文件路径（默认向上查找 "+config.ConfigFileName+"）")
	fs.StringVar(&opts.format, "format", "", "输出格式: text, json")
	fs.StringVar(&opts.output, "o", "", "输出文件")
	fs.BoolVar(&opts.hexInput, "hex", false, "参数是十六进制字节码")
	fs.BoolVar(&opts.noOffsets, "no-offsets", false, "文本输出不显示偏移")
	fs.BoolVar(&opts.verbose, "verbose", false, "输出调试日志")

	switch cmd {
	case "help", "-h", "--help":
		usage(stdout, fs)
		return nil
	case "version", "--version":
		fmt.Fprintf(stdout, "%s version %s\n", Name, Version)
		return nil
	}

	if err := fs.Parse(cmdArgs); err != nil {
		return err
	}
	cfg, err := loadConfig(&opts)
	if err != nil {
		return err
	}
	if cmd == "init" {
		return initConfig(stdout, &opts)
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	bytecode.SetLogger(logger)
	defer bytecode.SetLogger(nil)

	switch cmd {
	case "disasm":
		return disasm(stdout, cfg, &opts, fs.Args())
	case "roundtrip":
		return roundtrip(stdout, &opts, fs.Args())
	case "emit":
		return emit(stdout, cfg, &opts, logger)
	default:
		usage(stderr, fs)
		return fmt.Errorf("未知命令: %s", cmd)
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `%s - JVM 字节码工具 v%s

用法:
  %s <命令> [选项] [参数]

命令:
  disasm    反汇编 class 文件或原始字节码
  roundtrip 解码后重新编码，检查字节是否一致
  emit      生成示例 class 文件
  init      生成默认配置文件
  version   显示版本信息
  help      显示帮助信息
`, Name, Version, Name)
	if fs != nil {
		fmt.Fprintln(w, "\n选项:")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

// loadConfig 加载配置，命令行选项优先
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	p := opts.configPath
	if p == "" {
		p = config.Find(".")
	}
	if p != "" {
		var err error
		if cfg, err = config.Load(p); err != nil {
			return nil, err
		}
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.noOffsets {
		cfg.Output.ShowOffsets = false
	}
	return cfg, cfg.Validate()
}

// initConfig 写出默认配置
func initConfig(stdout io.Writer, opts *options) error {
	p := opts.output
	if p == "" {
		p = config.ConfigFileName
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("配置文件已存在: %s", p)
	}
	if err := config.Default().Save(p); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "配置文件已生成: %s\n", p)
	return nil
}

// ============================================================================
// 反汇编
// ============================================================================

// methodListing 一个方法的反汇编结果
type methodListing struct {
	Name       string          `json:"name,omitempty"`
	Descriptor string          `json:"descriptor,omitempty"`
	MaxStack   int             `json:"max_stack"`
	MaxLocals  int             `json:"max_locals"`
	Code       []bytecode.Line `json:"code"`
	Handlers   []handlerLine   `json:"exception_table,omitempty"`

	list *bytecode.InstructionList
	cp   constpool.Accessor
}

type handlerLine struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Handler   int    `json:"handler"`
	CatchType string `json:"catch_type,omitempty"`
}

// readInput 读取参数指定的字节：十六进制串或文件
func readInput(opts *options, args []string) ([]byte, string, error) {
	if len(args) == 0 {
		return nil, "", fmt.Errorf("请指定输入")
	}
	if opts.hexInput {
		data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, "")), ""))
		if err != nil {
			return nil, "", fmt.Errorf("invalid hex input: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", err
	}
	return data, args[0], nil
}

// disasm 反汇编命令
func disasm(stdout io.Writer, cfg *config.Config, opts *options, args []string) error {
	data, file, err := readInput(opts, args)
	if err != nil {
		return err
	}

	var methods []methodListing
	if bytes.HasPrefix(data, []byte{0xca, 0xfe, 0xba, 0xbe}) || strings.HasSuffix(file, ".class") {
		if methods, err = classListings(data); err != nil {
			return err
		}
	} else {
		list, err := bytecode.Decode(data)
		if err != nil {
			return err
		}
		m := methodListing{Code: bytecode.Listing(nil, list), list: list}
		if m.MaxStack, err = bytecode.MaxStack(nil, list, nil); err != nil {
			// 未知常量池时无法计算成员指令的栈效应
			m.MaxStack = -1
		}
		m.MaxLocals = bytecode.MaxLocals(list, 0)
		methods = append(methods, m)
	}

	out, closeOut, err := openOutput(stdout, opts.output)
	if err != nil {
		return err
	}
	defer closeOut()

	if cfg.Output.Format == config.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", cfg.Output.Indent)
		return enc.Encode(methods)
	}
	for i, m := range methods {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if m.Name != "" {
			fmt.Fprintf(out, "%s%s\n", m.Name, m.Descriptor)
			fmt.Fprintf(out, "  stack=%d, locals=%d\n", m.MaxStack, m.MaxLocals)
		}
		if err := bytecode.Format(out, m.cp, m.list, cfg.Output.ShowOffsets); err != nil {
			return err
		}
		if len(m.Handlers) > 0 {
			fmt.Fprintln(out, "  Exception table:")
			for _, h := range m.Handlers {
				catchType := h.CatchType
				if catchType == "" {
					catchType = "any"
				}
				fmt.Fprintf(out, "    %5d %5d %5d   %s\n", h.Start, h.End, h.Handler, catchType)
			}
		}
	}
	return nil
}

// classListings 反汇编 class 文件中所有带 Code 属性的方法
func classListings(data []byte) ([]methodListing, error) {
	cf, err := jvmgen.ReadClassFile(data)
	if err != nil {
		return nil, err
	}
	var methods []methodListing
	for i := range cf.Methods {
		mi := &cf.Methods[i]
		name, desc, err := cf.MemberName(mi)
		if err != nil {
			return nil, err
		}
		code, err := cf.MethodCode(mi)
		if errors.Is(err, jvmgen.ErrNoCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", name, desc, err)
		}
		list, _, err := code.Decode(cf.Pool)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", name, desc, err)
		}
		m := methodListing{
			Name:       name,
			Descriptor: desc,
			MaxStack:   int(code.MaxStack),
			MaxLocals:  int(code.MaxLocals),
			Code:       bytecode.Listing(cf.Pool, list),
			list:       list,
			cp:         cf.Pool,
		}
		for _, e := range code.ExceptionTable {
			h := handlerLine{Start: int(e.StartPC), End: int(e.EndPC), Handler: int(e.HandlerPC)}
			if e.CatchType != 0 {
				h.CatchType = constpool.Describe(cf.Pool, e.CatchType)
			}
			m.Handlers = append(m.Handlers, h)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// ============================================================================
// 往返检查
// ============================================================================

// roundtrip 解码再编码，字节必须一致
func roundtrip(stdout io.Writer, opts *options, args []string) error {
	data, _, err := readInput(opts, args)
	if err != nil {
		return err
	}
	list, err := bytecode.Decode(data)
	if err != nil {
		return err
	}
	again, err := list.Bytes()
	if err != nil {
		return err
	}
	if !bytes.Equal(data, again) {
		for i := 0; i < len(data) && i < len(again); i++ {
			if data[i] != again[i] {
				return fmt.Errorf("round trip differs at offset %d: %#02x != %#02x", i, data[i], again[i])
			}
		}
		return fmt.Errorf("round trip length differs: %d != %d", len(data), len(again))
	}
	fmt.Fprintf(stdout, "ok: %d instructions, %d bytes\n", list.Len(), len(again))
	return nil
}

// ============================================================================
// 生成示例类
// ============================================================================

// emit 生成配置中描述的示例类
func emit(stdout io.Writer, cfg *config.Config, opts *options, logger *zap.Logger) error {
	c := jvmgen.NewClass(cfg.Emit.ClassName, cfg.Emit.Super).WithLogger(logger)
	if err := c.AddDefaultConstructor(); err != nil {
		return err
	}
	if err := c.AddPrintMain(cfg.Emit.Lines); err != nil {
		return err
	}
	if err := c.AddMaxMethod(); err != nil {
		return err
	}
	data, err := c.Bytes()
	if err != nil {
		return err
	}

	p := opts.output
	if p == "" {
		p = path.Base(cfg.Emit.ClassName) + ".class"
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "已生成 %s (%d 字节)\n", p, len(data))
	return nil
}

// openOutput 打开输出，路径为空时写到 stdout
func openOutput(stdout io.Writer, p string) (io.Writer, func(), error) {
	if p == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
