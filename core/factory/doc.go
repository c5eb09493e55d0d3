// Package factory instantiates pluggable modules, such as metrics sinks, from
// configuration. A module is described by a type name and a map of raw
// settings; the registered constructor decodes the settings with Decode.
//
//	reg := factory.NewRegistry[Sink]()
//	_ = reg.Register("stdout", func(conf map[string]any) (Sink, error) {
//	    var c struct{ Prefix string `json:"prefix"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newStdoutSink(c.Prefix), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "stdout"})
package factory
