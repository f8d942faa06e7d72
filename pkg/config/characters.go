package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CharacterInfo 角色信息
type CharacterInfo struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
}

// CharacterDirectory 角色目录，按ID查找显示名称
type CharacterDirectory struct {
	characters map[string]CharacterInfo
}

type characterFile struct {
	Characters []CharacterInfo `yaml:"characters"`
}

// NewCharacterDirectory 从角色列表创建目录
func NewCharacterDirectory(characters []CharacterInfo) *CharacterDirectory {
	d := &CharacterDirectory{characters: make(map[string]CharacterInfo, len(characters))}
	for _, c := range characters {
		d.characters[c.ID] = c
	}
	return d
}

// LoadCharacterDirectory 从 YAML 文件加载角色目录
func LoadCharacterDirectory(path string) (*CharacterDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character file %s: %w", path, err)
	}
	return ParseCharacterDirectory(data)
}

// ParseCharacterDirectory 解析 YAML 内容
func ParseCharacterDirectory(data []byte) (*CharacterDirectory, error) {
	var file characterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse character file: %w", err)
	}
	for i, c := range file.Characters {
		if c.ID == "" {
			return nil, fmt.Errorf("character #%d: missing id", i)
		}
	}
	return NewCharacterDirectory(file.Characters), nil
}

// DisplayName 返回角色显示名称，未登记时返回ID本身
func (d *CharacterDirectory) DisplayName(id string) string {
	if d != nil {
		if c, ok := d.characters[id]; ok && c.DisplayName != "" {
			return c.DisplayName
		}
	}
	return id
}
