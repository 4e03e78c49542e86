package spec

import (
	"github.com/pb33f/libopenapi/orderedmap"
	yaml "go.yaml.in/yaml/v4"

	"github.com/apimock-project/apimock-go/pkg/logger"
)

// extensionString reads a string-valued vendor extension, returning "" when absent.
func extensionString(extensions *orderedmap.Map[string, *yaml.Node], key string) string {
	node := extensionNode(extensions, key)
	if node == nil {
		return ""
	}
	var value string
	if err := node.Decode(&value); err != nil {
		logger.Warnf("extension %s is not a string: %v", key, err)
		return ""
	}
	return value
}

// extensionStringMap reads a map-valued vendor extension, returning nil when absent.
func extensionStringMap(extensions *orderedmap.Map[string, *yaml.Node], key string) map[string]string {
	node := extensionNode(extensions, key)
	if node == nil {
		return nil
	}
	var value map[string]string
	if err := node.Decode(&value); err != nil {
		logger.Warnf("extension %s is not a string map: %v", key, err)
		return nil
	}
	return value
}

func extensionNode(extensions *orderedmap.Map[string, *yaml.Node], key string) *yaml.Node {
	if extensions == nil {
		return nil
	}
	node, ok := extensions.Get(key)
	if !ok {
		return nil
	}
	return node
}

// yamlNodeToObj converts a YAML node to a go object
func yamlNodeToObj(node *yaml.Node) interface{} {
	if node == nil {
		return nil
	}
	if len(node.Content) == 0 && node.Value == "" {
		return nil
	}
	var obj interface{}
	if err := node.Decode(&obj); err != nil {
		logger.Warnf("failed to decode example node: %v", err)
		return nil
	}
	return obj
}
