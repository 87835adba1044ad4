package domain

import "slices"

// ChainConfig is the bundler configuration assembled for one task.
// It mirrors the subset of webpack options the plugin manages; Vite holds
// the vite-mode configuration verbatim.
type ChainConfig struct {
	Name         string              `json:"name"`
	Mode         Mode                `json:"mode"`
	Entry        map[string][]string `json:"entry,omitempty"`
	Template     string              `json:"template,omitempty"`
	Devtool      string              `json:"devtool,omitempty"`
	Output       Output              `json:"output"`
	Resolve      Resolve             `json:"resolve"`
	Babel        Babel               `json:"babel"`
	Optimization Optimization        `json:"optimization"`
	DevServer    DevServer           `json:"devServer"`
	Performance  Performance         `json:"performance"`
	Externals    map[string]string   `json:"externals,omitempty"`
	Define       map[string]string   `json:"define,omitempty"`
	Plugins      []PluginRef         `json:"plugins,omitempty"`
	Vite         map[string]any      `json:"vite,omitempty"`
}

type Output struct {
	Path          string `json:"path"`
	PublicPath    string `json:"publicPath"`
	Filename      string `json:"filename"`
	ChunkFilename string `json:"chunkFilename"`
	Clean         bool   `json:"clean"`
}

type Resolve struct {
	Modules    []string          `json:"modules"`
	Extensions []string          `json:"extensions"`
	Alias      map[string]string `json:"alias,omitempty"`
}

// AddModule appends dir to the module search path unless it is already
// present.
func (r *Resolve) AddModule(dir string) {
	if slices.Contains(r.Modules, dir) {
		return
	}
	r.Modules = append(r.Modules, dir)
}

// Babel describes the script loader. Presets and plugins use babel's
// own shape: a name, or a [name, options] pair.
type Babel struct {
	Loader  string `json:"loader"`
	Presets []any  `json:"presets,omitempty"`
	Plugins []any  `json:"plugins,omitempty"`
}

type Optimization struct {
	Minimize    bool   `json:"minimize"`
	Minimizer   string `json:"minimizer,omitempty"`
	SplitChunks bool   `json:"splitChunks"`
}

type DevServer struct {
	Host               string `json:"host,omitempty"`
	Port               int    `json:"port,omitempty"`
	HTTPS              bool   `json:"https"`
	Hot                bool   `json:"hot"`
	LiveReload         bool   `json:"liveReload"`
	Open               bool   `json:"open"`
	Mock               bool   `json:"mock"`
	HistoryAPIFallback bool   `json:"historyApiFallback"`
}

type Performance struct {
	Hints string `json:"hints,omitempty"`
}

// PluginRef names a bundler plugin and the options it is constructed with.
type PluginRef struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options,omitempty"`
}

// AddPlugin appends p, replacing an earlier plugin with the same name.
func (c *ChainConfig) AddPlugin(p PluginRef) {
	for i := range c.Plugins {
		if c.Plugins[i].Name == p.Name {
			c.Plugins[i] = p
			return
		}
	}
	c.Plugins = append(c.Plugins, p)
}

// HasPlugin reports whether a plugin with name is configured.
func (c *ChainConfig) HasPlugin(name string) bool {
	return slices.ContainsFunc(c.Plugins, func(p PluginRef) bool { return p.Name == name })
}

// SetDefine records a compile-time constant.
func (c *ChainConfig) SetDefine(key, value string) {
	if c.Define == nil {
		c.Define = make(map[string]string)
	}
	c.Define[key] = value
}

// SetExternal maps an import request to a runtime global expression.
func (c *ChainConfig) SetExternal(request, global string) {
	if c.Externals == nil {
		c.Externals = make(map[string]string)
	}
	c.Externals[request] = global
}

// SetAlias maps an import prefix to a replacement path.
func (c *ChainConfig) SetAlias(from, to string) {
	if c.Resolve.Alias == nil {
		c.Resolve.Alias = make(map[string]string)
	}
	c.Resolve.Alias[from] = to
}
