// Package config 实现 jvmbc 命令行的配置文件
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// 常量定义
const (
	ConfigFileName = "jvmbc.toml" // 配置文件名

	FormatText = "text"
	FormatJSON = "json"
)

// Config 命令行配置
type Config struct {
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
	Emit   EmitConfig   `toml:"emit"`
}

// OutputConfig 反汇编输出
type OutputConfig struct {
	// Format 输出格式：text 或 json
	Format string `toml:"format"`

	// ShowOffsets 文本输出是否带字节偏移
	ShowOffsets bool `toml:"show_offsets"`

	// Indent JSON 输出的缩进
	Indent string `toml:"indent"`
}

// LogConfig 日志
type LogConfig struct {
	// Level 日志级别：debug、info、warn、error
	Level string `toml:"level"`

	// Development 开发模式输出（可读格式、带调用位置）
	Development bool `toml:"development"`
}

// EmitConfig emit 子命令生成的示例类
type EmitConfig struct {
	// ClassName 类的内部名称，如 demo/Hello
	ClassName string `toml:"class_name"`

	// Super 父类，为空时为 java/lang/Object
	Super string `toml:"super"`

	// Lines main 方法逐行打印的内容
	Lines []string `toml:"lines"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:      FormatText,
			ShowOffsets: true,
			Indent:      "  ",
		},
		Log: LogConfig{
			Level: "warn",
		},
		Emit: EmitConfig{
			ClassName: "demo/Hello",
			Lines:     []string{"Hello, JVM"},
		},
	}
}

// Load 从文件加载配置，缺省字段取默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Find 从 dir 开始向上查找配置文件，找不到返回空字符串
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate 检查所有字段，问题合并返回
func (c *Config) Validate() error {
	var err error
	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		err = multierr.Append(err, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	if _, lerr := c.Log.ZapLevel(); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", lerr))
	}
	if c.Emit.ClassName == "" {
		err = multierr.Append(err, fmt.Errorf("emit.class_name: must not be empty"))
	} else if strings.ContainsAny(c.Emit.ClassName, ".;[") {
		err = multierr.Append(err, fmt.Errorf("emit.class_name: %q is not an internal class name", c.Emit.ClassName))
	}
	return err
}

// ZapLevel 解析日志级别
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, err
	}
	return level, nil
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	content, err := generateConfigWithComments(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateConfigWithComments 生成带注释的配置文件内容
func generateConfigWithComments(c *Config) (string, error) {
	lines, err := toml.Marshal(map[string][]string{"lines": c.Emit.Lines})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("[output]\n")
	sb.WriteString("# 输出格式：text 或 json\n")
	sb.WriteString(fmt.Sprintf("format = %q\n", c.Output.Format))
	sb.WriteString("# 文本输出是否带字节偏移\n")
	sb.WriteString(fmt.Sprintf("show_offsets = %t\n", c.Output.ShowOffsets))
	sb.WriteString("# JSON 缩进\n")
	sb.WriteString(fmt.Sprintf("indent = %q\n\n", c.Output.Indent))

	sb.WriteString("[log]\n")
	sb.WriteString("# 日志级别：debug、info、warn、error\n")
	sb.WriteString(fmt.Sprintf("level = %q\n", c.Log.Level))
	sb.WriteString(fmt.Sprintf("development = %t\n\n", c.Log.Development))

	sb.WriteString("[emit]\n")
	sb.WriteString("# 示例类的内部名称\n")
	sb.WriteString(fmt.Sprintf("class_name = %q\n", c.Emit.ClassName))
	sb.WriteString(fmt.Sprintf("super = %q\n", c.Emit.Super))
	sb.WriteString("# main 方法打印的内容\n")
	sb.Write(lines)

	return sb.String(), nil
}
