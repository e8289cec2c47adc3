// Package serializer writes configuration trees and solutions documents.
//
// Output is indented UTF-8 XML with a declaration, in the layout the parser
// package reads:
//
//	<vehicle-model name="Line 2024">
//	  <and-or-tree>
//	    <node type="mark" name="Color">
//	      <node type="AND" name="Red" group="OR">
//	        <node type="model" name="Sedan"/>
//	      </node>
//	    </node>
//	  </and-or-tree>
//	</vehicle-model>
//
// Files are replaced atomically: data goes to a temporary file in the
// destination directory, is synced, then renamed over the destination.
// Any failure is an IO error and leaves an existing file untouched.
package serializer
