// Package voc builds, writes and reads PASCAL VOC annotation documents.
//
// A document describes one image and its labelled boxes:
//
//	<annotation>
//	  <folder>collected</folder>
//	  <filename>biscuit01.jpg</filename>
//	  <path>images/collected/biscuit01.jpg</path>
//	  <source>
//	    <database>Unknown</database>
//	  </source>
//	  <size>
//	    <width>640</width>
//	    <height>480</height>
//	    <depth>3</depth>
//	  </size>
//	  <segmented>0</segmented>
//	  <object>
//	    <name>biscuit</name>
//	    <pose>Unspecified</pose>
//	    <truncated>0</truncated>
//	    <difficult>0</difficult>
//	    <bndbox>
//	      <xmin>112</xmin>
//	      <ymin>80</ymin>
//	      <xmax>530</xmax>
//	      <ymax>401</ymax>
//	    </bndbox>
//	  </object>
//	</annotation>
//
// Element names and order are fixed; training-set tooling depends on them.
// Documents are written without an XML declaration, indented by two spaces
// and terminated by a newline. Marshal output depends only on the record, so
// annotating the same image twice yields byte-identical files.
package voc
