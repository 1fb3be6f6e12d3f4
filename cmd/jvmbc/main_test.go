package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/jvmbc/internal/config"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	require.Equal(t, "jvmbc version "+Version+"\n", out)
}

func TestDisasmHex(t *testing.T) {
	out, err := runCmd(t, "disasm", "-config", writeConfig(t), "-hex", "0607", "60ac")
	require.NoError(t, err)
	require.Equal(t, "     0: iconst_3\n     1: iconst_4\n     2: iadd\n     3: ireturn\n", out)

	out, err = runCmd(t, "disasm", "-config", writeConfig(t), "-no-offsets", "-hex", "04ac")
	require.NoError(t, err)
	require.Equal(t, "iconst_1\nireturn\n", out)
}

func TestDisasmJSON(t *testing.T) {
	out, err := runCmd(t, "disasm", "-config", writeConfig(t), "-format", "json", "-hex", "060760ac")
	require.NoError(t, err)

	var methods []struct {
		MaxStack int `json:"max_stack"`
		Code     []struct {
			Offset int    `json:"offset"`
			Opcode string `json:"opcode"`
		} `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &methods))
	require.Len(t, methods, 1)
	require.Equal(t, 2, methods[0].MaxStack)
	require.Len(t, methods[0].Code, 4)
	require.Equal(t, "iadd", methods[0].Code[2].Opcode)
	require.Equal(t, 3, methods[0].Code[3].Offset)
}

func TestRoundTrip(t *testing.T) {
	out, err := runCmd(t, "roundtrip", "-config", writeConfig(t), "-hex", "c4150100a7fffcb1")
	require.NoError(t, err)
	require.Equal(t, "ok: 3 instructions, 8 bytes\n", out)

	_, err = runCmd(t, "roundtrip", "-config", writeConfig(t), "-hex", "10")
	require.Error(t, err)
}

func TestEmitThenDisasm(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t)
	classPath := filepath.Join(dir, "Hello.class")

	_, err := runCmd(t, "emit", "-config", cfgPath, "-o", classPath)
	require.NoError(t, err)
	data, err := os.ReadFile(classPath)
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe}, data[:4])

	out, err := runCmd(t, "disasm", "-config", cfgPath, classPath)
	require.NoError(t, err)
	require.Contains(t, out, "<init>()V\n  stack=1, locals=1\n")
	require.Contains(t, out, "main([Ljava/lang/String;)V\n")
	require.Contains(t, out, "// java/lang/System.out:Ljava/io/PrintStream;")
	require.Contains(t, out, "max([I)I\n  stack=3, locals=3\n")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCmd(t, "frobnicate", "-config", writeConfig(t))
	require.Error(t, err)

	_, err = runCmd(t)
	require.Error(t, err)
}

func TestInitRefusesOverwrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "jvmbc.toml")
	_, err := runCmd(t, "init", "-config", writeConfig(t), "-o", p)
	require.NoError(t, err)
	_, err = runCmd(t, "init", "-config", writeConfig(t), "-o", p)
	require.Error(t, err)
}

// writeConfig 写出默认配置，避免测试读到工作目录外的配置文件
func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Default().Save(p))
	return p
}
